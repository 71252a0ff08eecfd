package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/svgcrop/pkg/config"
	"github.com/matzehuels/svgcrop/pkg/pipeline"
	"github.com/matzehuels/svgcrop/pkg/render/chrome"
)

// browserCommand creates the browser command, which keeps a Chrome
// instance running so that later crop calls skip the launch.
func (c *CLI) browserCommand() *cobra.Command {
	var renderer rendererFlags

	cmd := &cobra.Command{
		Use:   "browser",
		Short: "Start a persistent browser for crop --control-url",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := c.Config.Renderer
			renderer.apply(cmd, &cfg)
			cfg.Kind = pipeline.RendererChrome
			cfg.ControlURL = ""
			return c.runBrowser(cmd, cfg)
		},
	}

	cmd.Flags().StringVar(&renderer.bin, "chrome-bin", "", "Chrome executable")
	cmd.Flags().BoolVar(&renderer.noSandbox, "no-sandbox", false, "disable the Chrome sandbox")

	return cmd
}

func (c *CLI) runBrowser(cmd *cobra.Command, cfg config.Renderer) error {
	ctx := cmd.Context()

	r, err := c.newRenderer(cfg)
	if err != nil {
		return err
	}
	cr := r.(*chrome.Renderer)
	defer cr.Close()

	h, err := cr.Start(ctx)
	if err != nil {
		return err
	}

	printSuccess("Browser running")
	printKeyValue("PID", strconv.Itoa(h.PID))
	printKeyValue("Control URL", h.ControlURL)
	printNextStep("Crop with it", fmt.Sprintf("%s crop --control-url %s <files>", appName, h.ControlURL))
	printDetail("Press Ctrl+C to stop")

	<-ctx.Done()
	printInfo("Stopping browser")
	return nil
}
