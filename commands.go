package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"patient-studies-server/internal/accounts"
	"patient-studies-server/internal/fixtures"
	"patient-studies-server/internal/models"
)

func createUserCmd() *cobra.Command {
	var username, password string
	var staff bool

	cmd := &cobra.Command{
		Use:   "createuser",
		Short: "Create an API account and print its token",
		RunE: func(cmd *cobra.Command, args []string) error {
			if username == "" || password == "" {
				return errors.New("--username and --password are required")
			}
			a, err := bootstrap()
			if err != nil {
				return err
			}
			defer a.close()

			user := models.User{Username: username, IsActive: true, IsStaff: staff}
			if err := user.SetPassword(password); err != nil {
				return fmt.Errorf("hash password: %w", err)
			}
			svc := accounts.NewService(a.db, a.log)
			token, err := svc.CreateUser(cmd.Context(), &user, accounts.CreateOptions{})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token.Key)
			return nil
		},
	}
	cmd.Flags().StringVar(&username, "username", "", "Account username")
	cmd.Flags().StringVar(&password, "password", "", "Account password")
	cmd.Flags().BoolVar(&staff, "staff", false, "Allow the account to create other accounts")
	return cmd
}

func loadDataCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "loaddata FILE...",
		Short: "Import fixture files, one transaction per file",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootstrap()
			if err != nil {
				return err
			}
			defer a.close()

			loader := fixtures.NewLoader(a.db, accounts.NewService(a.db, a.log), a.log)
			total := 0
			for _, path := range args {
				n, err := loader.LoadFile(cmd.Context(), path)
				if err != nil {
					return err
				}
				total += n
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Installed %d object(s) from %d fixture(s)\n", total, len(args))
			return nil
		},
	}
}

func catalogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Manage the body part and type catalogs",
	}

	addCmd := &cobra.Command{
		Use:       "add body-part|type NAME",
		Short:     "Add a catalog entry",
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{"body-part", "type"},
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootstrap()
			if err != nil {
				return err
			}
			defer a.close()

			name := strings.TrimSpace(args[1])
			if name == "" {
				return errors.New("catalog name may not be blank")
			}
			db := a.db.WithContext(cmd.Context())
			switch args[0] {
			case "body-part":
				err = db.Create(&models.BodyPart{Name: name}).Error
			case "type":
				err = db.Create(&models.StudyType{Name: name}).Error
			default:
				return fmt.Errorf("unknown catalog %q, want body-part or type", args[0])
			}
			if err != nil {
				return fmt.Errorf("add %s %q: %w", args[0], name, err)
			}
			a.log.Info().Str("catalog", args[0]).Str("name", name).Msg("catalog entry added")
			return nil
		},
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "Print both catalogs",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootstrap()
			if err != nil {
				return err
			}
			defer a.close()

			db := a.db.WithContext(cmd.Context())
			parts, err := models.BodyPartNames(db)
			if err != nil {
				return err
			}
			types, err := models.StudyTypeNames(db)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Body parts:")
			for _, name := range parts {
				fmt.Fprintln(out, "  "+name)
			}
			fmt.Fprintln(out, "Types:")
			for _, name := range types {
				fmt.Fprintln(out, "  "+name)
			}
			return nil
		},
	}

	cmd.AddCommand(addCmd, listCmd)
	return cmd
}
