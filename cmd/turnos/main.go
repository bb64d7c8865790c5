package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/vidasana/turnos/internal/config"
	"github.com/vidasana/turnos/internal/domain/identity"
	"github.com/vidasana/turnos/internal/domain/turno"
	"github.com/vidasana/turnos/internal/platform/mockapi"
	"github.com/vidasana/turnos/internal/platform/notify"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(os.Stdout).ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(out io.Writer) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "turnos",
		Short:        "VidaSana appointment client",
		SilenceUsage: true,
	}
	rootCmd.SetOut(out)

	rootCmd.AddCommand(loginCmd(out))
	rootCmd.AddCommand(registerCmd(out))
	rootCmd.AddCommand(logoutCmd(out))
	rootCmd.AddCommand(whoamiCmd(out))
	rootCmd.AddCommand(dashboardCmd(out))
	rootCmd.AddCommand(professionalsCmd(out))
	rootCmd.AddCommand(bookCmd(out))
	rootCmd.AddCommand(transitionCmd(out, "confirm", "Confirm a pending turno", turno.StatusConfirmed))
	rootCmd.AddCommand(transitionCmd(out, "cancel", "Cancel a pending turno", turno.StatusCancelled))
	rootCmd.AddCommand(mockAPICmd())
	return rootCmd
}

// withApp runs fn with a wired app and closes it afterwards.
func withApp(cmd *cobra.Command, out io.Writer, fn func(ctx context.Context, a *app) error) error {
	ctx := cmd.Context()
	a, err := newApp(ctx, out)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(ctx, a)
}

func loginCmd(out io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in as a patient or professional",
		RunE: func(cmd *cobra.Command, args []string) error {
			email, _ := cmd.Flags().GetString("email")
			password, _ := cmd.Flags().GetString("password")
			roleStr, _ := cmd.Flags().GetString("role")

			return withApp(cmd, out, func(ctx context.Context, a *app) error {
				role, err := identity.ParseRole(roleStr)
				if err != nil {
					return err
				}
				ident, err := a.auth.Login(ctx, identity.Credentials{Email: email, Password: password, Role: role})
				if err != nil {
					var verr *identity.ValidationError
					if errors.As(err, &verr) {
						a.notifier.Notify(notify.Error("Error", "Por favor complete todos los campos"))
					} else {
						a.notifier.Notify(notify.Error("Error de autenticación", "Credenciales incorrectas"))
					}
					return err
				}
				a.notifier.Notify(notify.Success("Inicio de sesión exitoso", "Bienvenido "+roleLabel(ident.Role)))
				return nil
			})
		},
	}
	cmd.Flags().String("email", "", "Account email")
	cmd.Flags().String("password", "", "Account password")
	cmd.Flags().String("role", string(identity.RolePatient), "patient or professional")
	return cmd
}

func registerCmd(out io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create a patient or professional account",
		RunE: func(cmd *cobra.Command, args []string) error {
			f := cmd.Flags()
			roleStr, _ := f.GetString("role")
			nombre, _ := f.GetString("nombre")
			apellido, _ := f.GetString("apellido")
			dni, _ := f.GetString("dni")
			especialidad, _ := f.GetString("especialidad")
			email, _ := f.GetString("email")
			password, _ := f.GetString("password")

			return withApp(cmd, out, func(ctx context.Context, a *app) error {
				role, err := identity.ParseRole(roleStr)
				if err != nil {
					return err
				}
				var draft identity.Draft
				if role == identity.RoleProfessional {
					draft, err = identity.NewProfessionalDraft(nombre, apellido, especialidad, email, password)
				} else {
					draft, err = identity.NewPatientDraft(nombre, apellido, dni, email, password)
				}
				if err != nil {
					a.notifier.Notify(notify.Error("Error", "Por favor complete todos los campos"))
					return err
				}
				if _, err := a.auth.Register(ctx, draft); err != nil {
					a.notifier.Notify(notify.Error("Error en el registro", err.Error()))
					return err
				}
				a.notifier.Notify(notify.Success("Registro exitoso", "Ahora puedes iniciar sesión con tus credenciales"))
				return nil
			})
		},
	}
	f := cmd.Flags()
	f.String("role", string(identity.RolePatient), "patient or professional")
	f.String("nombre", "", "First name")
	f.String("apellido", "", "Last name")
	f.String("dni", "", "National id (patients)")
	f.String("especialidad", "", "Specialty (professionals)")
	f.String("email", "", "Account email")
	f.String("password", "", "Account password")
	return cmd
}

func logoutCmd(out io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, out, func(ctx context.Context, a *app) error {
				if err := a.auth.Logout(ctx); err != nil {
					return err
				}
				a.notifier.Notify(notify.Info("Sesión cerrada", ""))
				return nil
			})
		},
	}
}

func whoamiCmd(out io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged-in identity",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, out, func(ctx context.Context, a *app) error {
				ident, err := a.restore(ctx)
				if err != nil {
					return err
				}
				renderIdentity(out, ident)
				return nil
			})
		},
	}
}

func dashboardCmd(out io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show the dashboard of the logged-in identity",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, out, func(ctx context.Context, a *app) error {
				d, err := a.dashboard(ctx)
				if err != nil {
					return err
				}
				renderDashboard(out, d, time.Now())
				return nil
			})
		},
	}
}

func professionalsCmd(out io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "professionals",
		Short: "List the professionals available for booking",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, out, func(ctx context.Context, a *app) error {
				if _, err := a.restore(ctx); err != nil {
					return err
				}
				list, err := a.directory().LoadProfessionals(ctx)
				if err != nil {
					a.notifier.Notify(notify.Error("Error", "No se pudieron cargar los profesionales"))
					return err
				}
				renderProfessionals(out, list)
				return nil
			})
		},
	}
}

func bookCmd(out io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "book",
		Short: "Request a new turno with a professional",
		RunE: func(cmd *cobra.Command, args []string) error {
			f := cmd.Flags()
			profID, _ := f.GetString("professional")
			dateStr, _ := f.GetString("date")
			hhmm, _ := f.GetString("time")
			reason, _ := f.GetString("reason")

			return withApp(cmd, out, func(ctx context.Context, a *app) error {
				d, err := a.dashboard(ctx)
				if err != nil {
					return err
				}
				if err := fillBooking(d.Booking, profID, dateStr, hhmm, reason); err != nil {
					a.notifier.Notify(notify.Error("Error", err.Error()))
					return err
				}
				created, err := d.Book(ctx)
				if err != nil && !turno.IsLoadError(err) {
					return err
				}
				fmt.Fprintf(out, "turno %s\n", created.ID)
				return nil
			})
		},
	}
	f := cmd.Flags()
	f.String("professional", "", "Professional id")
	f.String("date", "", "Day, YYYY-MM-DD")
	f.String("time", "", "Time of day, HH:MM")
	f.String("reason", "", "Motivo de la consulta")
	return cmd
}

// fillBooking opens the dialog and copies the flags into it. Empty flags are
// left unset so Submit reports them together.
func fillBooking(b *turno.Booking, profID, dateStr, hhmm, reason string) error {
	if err := b.Open(); err != nil {
		return err
	}
	if profID != "" {
		if err := b.SelectProfessional(profID); err != nil {
			return err
		}
	}
	if dateStr != "" {
		day, err := turno.ParseCalendarDate(dateStr)
		if err != nil {
			return err
		}
		if err := b.SelectDate(day.Year, day.Month, day.Day); err != nil {
			return err
		}
	}
	if hhmm != "" {
		if err := b.SetTime(hhmm); err != nil {
			return err
		}
	}
	return b.SetReason(reason)
}

func transitionCmd(out io.Writer, use, short string, target turno.Status) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <turno-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, out, func(ctx context.Context, a *app) error {
				d, err := a.dashboard(ctx)
				if err != nil {
					return err
				}
				if _, err := d.SetStatus(ctx, args[0], target); err != nil {
					if errors.Is(err, turno.ErrNotProfessional) || errors.Is(err, turno.ErrTransitionNotAllowed) ||
						errors.Is(err, turno.ErrNotFound) {
						a.notifier.Notify(notify.Error("Error", err.Error()))
					}
					return err
				}
				return nil
			})
		},
	}
}

func mockAPICmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mock-api",
		Short: "Serve an in-memory VidaSana API for local development",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if port, _ := cmd.Flags().GetString("port"); port != "" {
				cfg.MockAPIPort = port
			}
			if err := cfg.ValidateMock(); err != nil {
				return err
			}
			logger := newLogger(cfg)

			srv, err := mockapi.NewServer(mockapi.Options{
				SigningKey:     cfg.SigningKey(),
				TokenTTL:       cfg.MockTokenTTL,
				RequestTimeout: 30 * time.Second,
				Seed:           cfg.MockSeed,
				Password:       cfg.MockSeedPassword,
				CORSOrigins:    cfg.MockCORSOrigins,
			}, logger)
			if err != nil {
				return err
			}
			return srv.Run(cmd.Context(), ":"+cfg.MockAPIPort)
		},
	}
	cmd.Flags().String("port", "", "Listen port (overrides MOCK_API_PORT)")
	return cmd
}
