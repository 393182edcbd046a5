package cmd

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/facegate/facegate/internal/config"
	"github.com/facegate/facegate/internal/database"
	"github.com/spf13/cobra"
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Manage enrolled identities",
}

var usersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List enrolled identities",
	RunE:  runUsersList,
}

var usersDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete an enrolled identity and its registered image",
	Args:  cobra.ExactArgs(1),
	RunE:  runUsersDelete,
}

func init() {
	rootCmd.AddCommand(usersCmd)
	usersCmd.AddCommand(usersListCmd)
	usersCmd.AddCommand(usersDeleteCmd)
}

func runUsersList(cmd *cobra.Command, args []string) error {
	cat, pool, err := buildCatalog(config.Load())
	if err != nil {
		return err
	}
	defer pool.Close()

	users, err := cat.List(cmd.Context())
	if err != nil {
		return err
	}

	if len(users) == 0 {
		fmt.Println("No identities enrolled")
		return nil
	}
	for _, u := range users {
		registered := "unknown"
		if !u.RegisteredAt.IsZero() {
			registered = u.RegisteredAt.Format("2006-01-02 15:04:05")
		}
		fmt.Printf("%6d  %-30s  %s\n", u.ID, u.Username, registered)
	}
	return nil
}

func runUsersDelete(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid user id %q", args[0])
	}

	cat, pool, err := buildCatalog(config.Load())
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := cat.Delete(cmd.Context(), id); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return fmt.Errorf("user %d not found", id)
		}
		return err
	}

	fmt.Printf("Deleted user %d\n", id)
	return nil
}
