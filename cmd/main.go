/*
Copyright 2024 Blnk Finance Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package main

import (
	"fmt"
	"log"
	"os"

	"github.com/blnkfinance/cartreel"
	"github.com/blnkfinance/cartreel/config"
	"github.com/blnkfinance/cartreel/database"
	"github.com/blnkfinance/cartreel/internal/notification"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// Cartreel is the CLI application.
type Cartreel struct {
	cmd *cobra.Command
}

// cartreelInstance holds the service and configuration shared by subcommands.
type cartreelInstance struct {
	cartreel *cartreel.Cartreel
	cnf      *config.Configuration
}

func recoverPanic() {
	if rec := recover(); rec != nil {
		logrus.Error(rec)
		os.Exit(1)
	}
}

// preRun loads configuration and builds the service before any command runs.
func preRun(app *cartreelInstance, configFile *string) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		err := config.InitConfig(*configFile)
		if err != nil {
			log.Fatal("error loading config", err)
		}

		cnf, err := config.Fetch()
		if err != nil {
			return err
		}

		newCartreel, err := setupCartreel(cnf)
		if err != nil {
			notification.NotifyError(err)
			log.Fatal(err)
		}

		app.cartreel = newCartreel
		app.cnf = cnf
		return nil
	}
}

func setupCartreel(cfg *config.Configuration) (*cartreel.Cartreel, error) {
	db, err := database.NewDataSource(cfg)
	if err != nil {
		return nil, fmt.Errorf("error getting datasource: %v", err)
	}

	newCartreel, err := cartreel.NewCartreel(db)
	if err != nil {
		return nil, fmt.Errorf("error creating cartreel: %v", err)
	}
	return newCartreel, nil
}

func NewCLI() *Cartreel {
	var configFile string
	c := &cartreelInstance{}

	var rootCmd = &cobra.Command{
		Use:   "cartreel",
		Short: "Checkout lifecycle tracking and abandoned cart video emails",
		Run:   func(cmd *cobra.Command, args []string) {},
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "./cartreel.json", "Configuration file for cartreel")
	rootCmd.PersistentPreRunE = preRun(c, &configFile)

	rootCmd.AddCommand(serverCommands(c))
	rootCmd.AddCommand(migrateCommands(c))
	rootCmd.AddCommand(configCommands(c))

	return &Cartreel{cmd: rootCmd}
}

func (w Cartreel) executeCLI() {
	if err := w.cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func main() {
	defer recoverPanic()

	cli := NewCLI()
	cli.executeCLI()
}
