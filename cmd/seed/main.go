package main

import (
	"context"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli"

	"github.com/oksasatya/bootcamp-directory/config"
	pginfra "github.com/oksasatya/bootcamp-directory/internal/infrastructure/postgres"
	"github.com/oksasatya/bootcamp-directory/pkg/helpers"
)

const dirFlagName = "dir"

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-seed", cfg.Env)

	app := cli.NewApp()
	app.Name = "seed"
	app.Usage = "load or remove the fixture data set"
	app.Commands = []cli.Command{
		importCommand(cfg, logger),
		destroyCommand(cfg, logger),
	}
	if err := app.Run(os.Args); err != nil {
		logger.WithError(err).Fatal("seed failed")
	}
}

func importCommand(cfg *config.Config, logger *logrus.Logger) cli.Command {
	return cli.Command{
		Name:    "import",
		Aliases: []string{"i"},
		Usage:   "insert users, bootcamps and courses from JSON fixtures",
		Flags: []cli.Flag{
			cli.StringFlag{
				Name:  dirFlagName,
				Value: "_data",
				Usage: "directory holding users.json, bootcamps.json and courses.json",
			},
		},
		Action: func(c *cli.Context) error {
			f, err := loadFixtures(c.String(dirFlagName))
			if err != nil {
				return err
			}
			ctx := context.Background()
			pool, err := connect(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer pool.Close()

			s := &seeder{
				Users:     pginfra.NewUserRepository(pool),
				Bootcamps: pginfra.NewBootcampRepository(pool),
				Courses:   pginfra.NewCourseRepository(pool),
				Logger:    logger,
			}
			return s.Import(ctx, f)
		},
	}
}

func destroyCommand(cfg *config.Config, logger *logrus.Logger) cli.Command {
	return cli.Command{
		Name:    "destroy",
		Aliases: []string{"d"},
		Usage:   "delete every user, bootcamp and course",
		Action: func(c *cli.Context) error {
			ctx := context.Background()
			pool, err := connect(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer pool.Close()

			if _, err := pool.Exec(ctx, `TRUNCATE courses, bootcamps, users CASCADE`); err != nil {
				return err
			}
			logger.Info("data destroyed")
			return nil
		},
	}
}

// connect opens the pool and brings the schema up to date.
func connect(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*pgxpool.Pool, error) {
	if err := pginfra.Migrate(cfg.PostgresDSN(), cfg.MigrationsDir, logger); err != nil {
		return nil, err
	}
	return pginfra.NewPool(ctx, cfg.PostgresDSN(), pginfra.PoolOptions{
		MaxConns:    cfg.DBMaxConns,
		MinConns:    cfg.DBMinConns,
		MaxConnLife: cfg.DBMaxConnLife,
	}, logger)
}
