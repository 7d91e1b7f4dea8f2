package main

import (
	"fmt"
	"strings"

	"veredapos/internal/dto"
	"veredapos/internal/model"
	"veredapos/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"
)

var hashPINCmd = &cobra.Command{
	Use:   "hash-pin <pin>",
	Short: "Print the bcrypt hash of a staff PIN",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := validator.New().Var(args[0], "required,numeric,min=4,max=8"); err != nil {
			return fmt.Errorf("PIN must be 4 to 8 digits")
		}
		hash, err := service.HashPIN(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), hash)
		return nil
	},
}

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Staff accounts",
}

var (
	userName  string
	userRole  string
	userPIN   string
	userPerms []string
)

var userAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Create a staff account",
	RunE: func(cmd *cobra.Command, args []string) error {
		req := dto.CreateUserRequest{
			Name: userName,
			Role: strings.ToUpper(userRole),
			PIN:  userPIN,
		}
		for _, p := range userPerms {
			req.Permissions = append(req.Permissions, model.Permission(strings.ToUpper(p)))
		}
		if err := validator.New().Struct(req); err != nil {
			return err
		}

		ctx := cmd.Context()
		s, err := openSession(ctx)
		if err != nil {
			return err
		}
		defer s.Close()

		u, err := service.NewAuthService(s.store, s.cfg).CreateUser(ctx, req)
		if err != nil {
			return err
		}
		if err := s.save(ctx); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "user %s (%s) created with %d permissions\n", u.Name, u.Role, len(u.Permissions))
		return nil
	},
}

var userListCmd = &cobra.Command{
	Use:   "list",
	Short: "List staff accounts",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		s, err := openSession(ctx)
		if err != nil {
			return err
		}
		defer s.Close()

		for _, u := range service.NewAuthService(s.store, s.cfg).ListUsers(ctx) {
			state := "active"
			if !u.Active {
				state = "inactive"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s  %-8s %-8s %s\n", u.ID, u.Role, state, u.Name)
		}
		return nil
	},
}

func init() {
	userAddCmd.Flags().StringVar(&userName, "name", "", "display name")
	userAddCmd.Flags().StringVar(&userRole, "role", model.RoleWaiter, "OWNER, GERENTE, CAIXA or GARCOM")
	userAddCmd.Flags().StringVar(&userPIN, "pin", "", "4 to 8 digit login PIN")
	userAddCmd.Flags().StringSliceVar(&userPerms, "perm", nil, "permission override, repeatable (default: the role's permissions)")
	_ = userAddCmd.MarkFlagRequired("name")
	_ = userAddCmd.MarkFlagRequired("pin")
	userCmd.AddCommand(userAddCmd, userListCmd)
}
