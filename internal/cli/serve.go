package cli

import (
	"bennypowers.dev/dtsc/lsp"
	"bennypowers.dev/dtsc/lsp/types"
	"github.com/spf13/cobra"
)

func newServeCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the language server over stdio",
		Long: `Run a Language Server Protocol server over stdin and stdout. Editors get
compile errors as diagnostics and a color picker for color variables.
Token files are resolved against the workspace root.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			server, err := lsp.NewServer(serverConfig(a))
			if err != nil {
				return err
			}
			return server.RunStdio()
		},
	}
}

func serverConfig(a *app) types.ServerConfig {
	return types.ServerConfig{
		TokensFiles: a.cfg.Tokens.Files,
		Prefix:      a.cfg.Tokens.Prefix,
		Variables:   a.cfg.Variables,
		LoadPaths:   a.cfg.LoadPaths,
		Style:       a.cfg.OutputStyle(),
		Validate:    a.cfg.ValidateOutput,
	}
}
