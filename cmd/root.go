// Copyright 2024 The Remote Docker Authors
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/briandowns/spinner"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/lime-green/remote-docker/pkg/aws"
	"github.com/lime-green/remote-docker/pkg/config"
	"github.com/lime-green/remote-docker/pkg/errors"
	"github.com/lime-green/remote-docker/pkg/log"
	"github.com/lime-green/remote-docker/pkg/process"
)

type cliConfig struct {
	logLevel    string
	profileName string
	configPath  string
}

type commandFunc func() *cobra.Command

var (
	c = &cliConfig{}

	commandsFN = []commandFunc{
		CreateKeyPair,
		Create,
		Update,
		Delete,
		Start,
		Stop,
		IP,
		SSH,
		Tunnel,
		Sync,
		Up,
		Context,
		EnableTerminationProtection,
		DisableTerminationProtection,
		Version,
	}
)

// Execute runs the root command and returns the process exit code
func Execute() int {
	root := &cobra.Command{
		Use:           fmt.Sprintf("%s COMMAND [ARG...]", config.GetBinaryName()),
		Short:         "Control a remote Docker engine running on AWS",
		SilenceErrors: true,
		PersistentPreRun: func(ccmd *cobra.Command, args []string) {
			log.SetLevel(c.logLevel)
			ccmd.SilenceUsage = true
		},
	}

	root.PersistentFlags().StringVar(&c.logLevel, "loglevel", "warn", "amount of information outputted (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&c.profileName, "profile", "", "name of the config profile to use")
	root.PersistentFlags().StringVar(&c.configPath, "config-path", "", fmt.Sprintf("path of the JSON config (default ~/%s)", config.DefaultConfigFile))

	for _, fn := range commandsFN {
		root.AddCommand(fn())
	}

	if err := root.Execute(); err != nil {
		log.Fail(err.Error())
		if uErr, ok := err.(errors.UserError); ok && uErr.Hint != "" {
			log.Hint("    %s", uErr.Hint)
		}
		return errors.ExitCode(err)
	}
	return errors.ExitCodeOK
}

// loadConfig resolves the configuration for the current invocation:
// config file + active profile + defaults
func loadConfig() (*config.Config, error) {
	return config.Load(afero.NewOsFs(), config.Options{
		Path:         c.configPath,
		PathExplicit: c.configPath != "",
		Profile:      c.profileName,
	})
}

// newProvider loads the config and builds the AWS provider for it
func newProvider(ctx context.Context) (*aws.Provider, *config.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}

	provider, err := aws.NewProvider(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	return provider, cfg, nil
}

func newSpinner(msg string) *spinner.Spinner {
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Suffix = " " + msg
	return s
}

// notifyInterrupt installs the interrupt handler. Callers install it
// before spawning the first child so an early Ctrl+C still reaches the
// supervisor instead of taking the CLI down around running children.
func notifyInterrupt() chan os.Signal {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	return stop
}

// supervise blocks until the user interrupts or every child has exited.
// An interrupt terminates all children (waiting for each) and is a clean
// shutdown. A child exiting non-zero on its own is recorded and surfaced,
// but deliberately does not take its siblings down: the user decides
// whether to stop the rest.
func supervise(stop chan os.Signal, sup *process.Supervisor, children ...*process.Child) error {
	defer signal.Stop(stop)

	exited := make(chan *process.Child, len(children))
	for _, child := range children {
		child := child
		go func() {
			<-child.Done()
			exited <- child
		}()
	}

	var firstErr error
	remaining := len(children)
	for remaining > 0 {
		select {
		case <-stop:
			log.Println("Shutting down...")
			if err := sup.TerminateAll(); err != nil {
				log.Debugf("failed to terminate all processes: %s", err)
			}
			return firstErr
		case child := <-exited:
			remaining--
			if err := child.ExitErr(); err != nil {
				if firstErr == nil {
					firstErr = err
				}
				if remaining > 0 {
					log.Fail(err.Error())
					log.Yellow("other processes keep running, press Ctrl+C to stop them")
				}
			}
		}
	}

	return firstErr
}
