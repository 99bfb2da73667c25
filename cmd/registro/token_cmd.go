package main

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jhoicas/registro-escuelas/pkg/jwt"
)

type tokenOutput struct {
	UserID     string `json:"user_id"`
	Role       string `json:"role"`
	ExpMinutes int    `json:"exp_minutes"`
	Token      string `json:"token"`
}

func newTokenCmd() *cobra.Command {
	var (
		userID     string
		role       string
		expMinutes int
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Emite un JWT para la API (importar y exportar requieren Bearer Token)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !jwt.ValidRole(role) {
				return withCode(exitValidation, fmt.Errorf("--role inválido %q (admin | operador | consulta)", role))
			}
			e, err := loadEnv()
			if err != nil {
				return err
			}
			if userID == "" {
				userID = uuid.NewString()
			}
			if expMinutes <= 0 {
				expMinutes = e.cfg.JWT.Expiration
			}
			tok, err := jwt.Generate(e.cfg.JWT.Secret, userID, role, e.cfg.JWT.Issuer, expMinutes)
			if err != nil {
				return withCode(exitValidation, err)
			}
			return writeJSONLine(os.Stdout, tokenOutput{UserID: userID, Role: role, ExpMinutes: expMinutes, Token: tok})
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "ID del usuario (por defecto uno nuevo)")
	cmd.Flags().StringVar(&role, "role", jwt.RoleOperador, "admin | operador | consulta")
	cmd.Flags().IntVar(&expMinutes, "exp", 0, "Vigencia en minutos (por defecto JWT_EXPIRATION_MINUTES)")
	return cmd
}
