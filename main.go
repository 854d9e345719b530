package main

import (
	"context"
	"taskflow/client/es"
	"taskflow/common"
	"taskflow/domain"
	"taskflow/event"
	"taskflow/indices"
	"taskflow/infra/tracing"
	"taskflow/persistence"
	"taskflow/servehttp"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type cli struct {
	v   *viper.Viper
	cfg *Config
}

func (c *cli) setupConfig(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(c.v)
	if err != nil {
		return err
	}
	common.ConfigureLogLevel(cfg.LogLevel)
	c.cfg = cfg
	return nil
}

// connectDatabase opens the configured database and migrates every persistent model.
func (c *cli) connectDatabase() (*persistence.DataSourceManager, error) {
	dbConfig := &persistence.DatabaseConfig{DriverType: c.cfg.DatabaseDriver, DriverArgs: c.cfg.DatabaseArgs}

	// create database (no conflict)
	if dbConfig.DriverType == persistence.DriverMysql {
		if err := persistence.PrepareMysqlDatabase(dbConfig.DriverArgs); err != nil {
			return nil, err
		}
	}

	ds := &persistence.DataSourceManager{DatabaseConfig: dbConfig}
	if err := ds.Start(); err != nil {
		return nil, err
	}
	if err := ds.GormDB(context.Background()).AutoMigrate(domain.PersistentModels...).Error; err != nil {
		ds.Stop()
		return nil, err
	}
	persistence.ActiveDataSourceManager = ds
	return ds, nil
}

func (c *cli) migrate(cmd *cobra.Command, args []string) error {
	ds, err := c.connectDatabase()
	if err != nil {
		return err
	}
	defer ds.Stop()
	logrus.Info("database migration finished")
	return nil
}

func (c *cli) serve(cmd *cobra.Command, args []string) error {
	logrus.Info("service start")

	if c.cfg.TracingEnabled {
		closer, err := tracing.InitGlobalTracer(common.ServiceName)
		if err != nil {
			return err
		}
		defer closer.Close()
	}

	ds, err := c.connectDatabase()
	if err != nil {
		return err
	}
	defer ds.Stop()

	searchEnabled := len(c.cfg.ElasticsearchURLs) > 0
	if searchEnabled {
		if _, err := es.CreateClient(c.cfg.ElasticsearchURLs...); err != nil {
			return err
		}
		event.EventHandlers = append(event.EventHandlers, indices.IndexActionEventHandle)
	} else {
		logrus.Warn("no elasticsearch address configured, action search is disabled")
	}

	engine := servehttp.BuildEngine(servehttp.EngineConfig{
		TrustGatewayHeaders: c.cfg.TrustGatewayHeaders,
		SearchEnabled:       searchEnabled,
	})
	return servehttp.StartHTTPServer(c.cfg.HttpAddr, engine)
}

func newRootCommand() (*cobra.Command, error) {
	c := &cli{v: viper.New()}
	root := &cobra.Command{
		Use:               common.ServiceName,
		Short:             "task estimate approval service",
		PersistentPreRunE: c.setupConfig,
		SilenceUsage:      true,
	}
	if err := setupFlags(root, c.v); err != nil {
		return nil, err
	}
	root.AddCommand(
		&cobra.Command{Use: "serve", Short: "serve the rest endpoints", RunE: c.serve},
		&cobra.Command{Use: "migrate", Short: "create or upgrade the database schema", RunE: c.migrate},
	)
	return root, nil
}

func main() {
	root, err := newRootCommand()
	if err != nil {
		logrus.Fatal(err)
	}
	if err := root.Execute(); err != nil {
		logrus.Fatal(err)
	}
}
