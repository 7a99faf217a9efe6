package main

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/jhoicas/erp-automation/internal/domain/entity"
	"github.com/jhoicas/erp-automation/pkg/config"
	"github.com/jhoicas/erp-automation/pkg/jwt"
)

type tokenOptions struct {
	UserID    string
	CompanyID string
	Role      string
	TTL       time.Duration
}

func newTokenCommand(opts *rootOptions) *cobra.Command {
	topts := &tokenOptions{}
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Emite un token de operación para la API (/api/jobs)",
		Long: `Firma un JWT con JWT_SECRET y JWT_ISSUER para llamar a la API de operación.
Los jobs recorren todas las empresas: --company solo queda registrado para auditoría.

Ejemplo:
  automation token --user 6f1c... --company 9a2e... --role admin --ttl 30m`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("cargar configuración: %w", err)
			}
			return issueToken(cmd.OutOrStdout(), opts.Format, cfg.JWT, topts)
		},
	}
	cmd.Flags().StringVar(&topts.UserID, "user", "", "user_id del operador (requerido)")
	cmd.Flags().StringVar(&topts.CompanyID, "company", "", "company_id del operador")
	cmd.Flags().StringVar(&topts.Role, "role", entity.RoleAdmin, "rol: admin | manager")
	cmd.Flags().DurationVar(&topts.TTL, "ttl", time.Hour, "vigencia del token")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func issueToken(w io.Writer, format string, jwtCfg config.JWTConfig, topts *tokenOptions) error {
	if !contains(entity.ManagerRoles, topts.Role) {
		return fmt.Errorf("rol %q sin acceso a la API de operación: debe ser uno de %v", topts.Role, entity.ManagerRoles)
	}
	signer, err := jwt.NewSigner(jwtCfg.Secret, jwtCfg.Issuer)
	if err != nil {
		return err
	}
	tok, err := signer.Issue(jwt.Subject{UserID: topts.UserID, CompanyID: topts.CompanyID, Role: topts.Role}, topts.TTL)
	if err != nil {
		return err
	}
	if format == "json" {
		return json.NewEncoder(w).Encode(map[string]any{
			"token":      tok,
			"role":       topts.Role,
			"expires_in": int64(topts.TTL.Seconds()),
		})
	}
	_, err = fmt.Fprintln(w, tok)
	return err
}
