// Command jira serves the project tracking API and manages its schema.
package main

import (
	"github.com/HarshaM0211/jira-software/internal/app"
	"github.com/HarshaM0211/jira-software/pkg/cli"
	"github.com/HarshaM0211/jira-software/pkg/config"
)

func main() {
	cmd := cli.NewServiceCommand(cli.ServiceCommandOptions{
		Name:          app.Name,
		Description:   "Project tracking API",
		ConfigPath:    "",
		EnvPrefix:     config.DefaultEnvPrefix,
		RunServer:     app.Serve,
		RunMigrations: app.Migrate,
	})
	cli.Execute(cmd)
}
