package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"hospital-scheduling/cmd/bootstrap"
	"hospital-scheduling/config"
	"hospital-scheduling/internal/domain/entity"
	"hospital-scheduling/internal/infrastructure/database"
	"hospital-scheduling/internal/repository"
	"hospital-scheduling/internal/usecase"
	"hospital-scheduling/pkg/jwt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "scheduling",
		Short:         "Hospital appointment scheduling service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(seedCmd())
	rootCmd.AddCommand(tokenCmd())

	if err := rootCmd.Execute(); err != nil {
		logrus.Errorf("%v", err)
		os.Exit(1)
	}
}

// load reads configuration and builds the logger every command shares
func load() (*config.Config, *logrus.Logger, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	log := bootstrap.NewLogger(cfg.App)
	log.Debug("Configuration loaded successfully")
	return cfg, log, nil
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := load()
			if err != nil {
				return err
			}

			// Initialize application with all dependencies
			app, err := bootstrap.New(cfg, log)
			if err != nil {
				return fmt.Errorf("failed to initialize application: %w", err)
			}

			// Run the application
			app.Run()
			return nil
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or revert the embedded database migrations",
	}

	run := func(apply func(cfg *config.Config, log *logrus.Logger) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			cfg, log, err := load()
			if err != nil {
				return err
			}
			return apply(cfg, log)
		}
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: run(func(cfg *config.Config, log *logrus.Logger) error {
			db, err := bootstrap.OpenDatabase(cfg, log)
			if err != nil {
				return err
			}
			m, err := database.NewMigrator(db)
			if err != nil {
				return err
			}
			defer m.Close()
			return database.MigrateUp(m, log)
		}),
	}

	var steps int
	downCmd := &cobra.Command{
		Use:   "down",
		Short: "Revert migrations",
		RunE: run(func(cfg *config.Config, log *logrus.Logger) error {
			db, err := bootstrap.OpenDatabase(cfg, log)
			if err != nil {
				return err
			}
			m, err := database.NewMigrator(db)
			if err != nil {
				return err
			}
			defer m.Close()
			return database.MigrateDown(m, steps, log)
		}),
	}
	downCmd.Flags().IntVar(&steps, "steps", 1, "Number of migrations to revert, 0 reverts all")

	cmd.AddCommand(upCmd, downCmd)
	return cmd
}

func seedCmd() *cobra.Command {
	var opts usecase.SeedOptions

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Seed specialties, doctors, time blocks and weekly templates with fake data",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := load()
			if err != nil {
				return err
			}

			db, err := bootstrap.OpenDatabase(cfg, log)
			if err != nil {
				return err
			}
			defer func() {
				if sqlDB, err := db.DB(); err == nil {
					sqlDB.Close()
				}
			}()

			seeder := usecase.NewSeedUsecase(
				db,
				log,
				repository.NewSpecialtyRepository(),
				repository.NewDoctorRepository(),
				repository.NewAvailabilityRepository(),
			)

			ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
			defer cancel()

			_, err = seeder.Seed(ctx, opts)
			return err
		},
	}
	cmd.Flags().IntVar(&opts.DoctorsPerSpecialty, "doctors", 3, "Doctors to create per specialty")
	cmd.Flags().Uint64Var(&opts.Seed, "seed", uint64(time.Now().UnixNano()), "Random seed for reproducible data")

	return cmd
}

func tokenCmd() *cobra.Command {
	var subject, role string

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Print a signed development access token",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := load()
			if err != nil {
				return err
			}
			if cfg.JWT.Secret == "" {
				return fmt.Errorf("JWT_SECRET is not set")
			}

			roleID, ok := entity.RoleIDByName(role)
			if !ok {
				return fmt.Errorf("unknown role %q, expected admin, doctor or patient", role)
			}

			token, _, err := jwt.NewJWTService(cfg.JWT).GenerateAccessToken(subject, roleID)
			if err != nil {
				return fmt.Errorf("failed to sign token: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "", "User reference carried in the sub claim")
	cmd.Flags().StringVar(&role, "role", "patient", "Role: admin, doctor or patient")
	_ = cmd.MarkFlagRequired("subject")

	return cmd
}
