package main

import (
	"fmt"
	"os"
	"time"

	"github.com/cfoust/uno/pkg/config"
	"github.com/cfoust/uno/pkg/version"

	"github.com/alecthomas/kong"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var CLI struct {
	Version bool `help:"Print version information and exit." short:"v"`
	Debug   bool `help:"Whether to enable debug logging."`

	Serve struct {
		Configs []string `arg:"" optional:"" name:"configs" help:"Configuration files for the server." type:"file"`
	} `cmd:"" help:"Start the uno server."`

	Check struct {
		Configs []string `arg:"" optional:"" name:"configs" help:"Configuration files to validate." type:"file"`
	} `cmd:"" help:"Validate configuration files and print the resulting table settings."`

	Config struct {
	} `cmd:"" help:"Write the default configuration to standard output."`
}

func versionString() string {
	return fmt.Sprintf(
		"uno %s (commit %s, built %s)",
		version.Version,
		version.GitCommit,
		version.BuildTime,
	)
}

// check loads configs exactly as serve would and reports the settings new
// rooms will use.
func check(configs []string) error {
	config, err := config.Process(configs)
	if err != nil {
		return err
	}

	server := config.Server
	log.Info().
		Strs("configs", configs).
		Int("tcp", server.Ingress.TCP.Port).
		Int("web", server.Ingress.Web.Port).
		Int("maxPlayers", server.Game.MaxPlayers).
		Int("handSize", server.Game.HandSize).
		Int("winningScore", server.Game.WinningScore).
		Msg("configuration ok")
	return nil
}

func exitOnError(err error) {
	if err == nil {
		return
	}
	log.Error().Err(err).Str("version", version.Version).Msg("uno exited")
	os.Exit(1)
}

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	// A bare invocation serves the embedded defaults.
	if len(os.Args) == 1 {
		exitOnError(serve(nil))
		return
	}

	ctx := kong.Parse(&CLI,
		kong.Name("uno"),
		kong.Description("an authoritative Uno server"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
			Summary: true,
		}))

	if CLI.Debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		log.Warn().Msg("debug logging enabled")
	}

	if CLI.Version {
		fmt.Println(versionString())
		return
	}

	switch ctx.Command() {
	case "serve", "serve <configs>":
		exitOnError(serve(CLI.Serve.Configs))
	case "check", "check <configs>":
		exitOnError(check(CLI.Check.Configs))
	case "config":
		os.Stdout.Write(config.DEFAULT)
	}
}
