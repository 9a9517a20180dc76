package cmd

import (
	"encoding/json"
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/MeKo-Tech/pobar/internal/platform"
)

// profileView is the printed form of a profile with its rendered flags.
type profileView struct {
	platform.Profile `yaml:",inline"`

	CFLAGS  []string `yaml:"cflags" json:"cflags"`
	LDFLAGS []string `yaml:"ldflags" json:"ldflags"`
}

func newProfileCommand() *cobra.Command {
	var (
		goos    string
		sdkRoot string
		format  string
	)

	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Print the linking profile for a target OS",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := platform.Resolve(goos)
			if err != nil {
				return err
			}
			view := profileView{Profile: p, CFLAGS: p.CFLAGS(sdkRoot), LDFLAGS: p.LDFLAGS(sdkRoot)}

			var out []byte
			switch format {
			case "yaml":
				out, err = yaml.Marshal(view)
			case "json":
				out, err = json.MarshalIndent(view, "", "  ")
				out = append(out, '\n')
			default:
				return fmt.Errorf("unsupported format %q (use yaml or json)", format)
			}
			if err != nil {
				return fmt.Errorf("encode profile: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}

	cmd.Flags().StringVar(&goos, "os", runtime.GOOS, "target OS (linux, darwin, windows)")
	cmd.Flags().StringVar(&sdkRoot, "sdk-root", "sdk", "SDK root used when rendering flags")
	cmd.Flags().StringVarP(&format, "format", "f", "yaml", "output format (yaml, json)")
	return cmd
}
