package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/s0up4200/snapctl/filter"
)

var (
	deviceFilter    string
	deviceJSON      bool
	requiredVersion string
	requireFeatures []string
)

// devicesCmd represents the devices command
var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "List device presets",
	Long: `List the device presets available for --device.

--filter takes a preset name from devices.presets in the config or an expr
expression evaluated per device. Available fields: Category, ID, Name, Width,
Height, Scale, Mobile. Helpers: inCategory(name), portrait(), landscape(),
aspectRatio(), physicalWidth(), physicalHeight().`,
	Example: `  snapctl devices --filter 'Mobile and Width < 400'
  snapctl devices --filter 'inCategory("tablet") and landscape()'`,
	Args: cobra.NoArgs,
	RunE: runDevices,
}

func init() {
	rootCmd.AddCommand(devicesCmd)
	devicesCmd.Flags().StringVar(&deviceFilter, "filter", "", "filter preset name or expression")
	devicesCmd.Flags().BoolVar(&deviceJSON, "json", false, "print as JSON")
}

func runDevices(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	manager := filter.NewManager()
	if err := manager.RegisterFilters(cfg.Devices.Presets); err != nil {
		return fmt.Errorf("invalid devices.presets: %w", err)
	}

	expression := deviceFilter
	if expression == "" {
		expression = cfg.Devices.DefaultFilter
	}

	catalog, err := client.Devices(ctx)
	if err != nil {
		return err
	}
	devices := filter.Flatten(catalog)

	if expression != "" {
		compiled, err := manager.Resolve(expression)
		if err != nil {
			return fmt.Errorf("invalid filter expression: %w", err)
		}
		logger.Debug().Str("filter", compiled.Expression()).Msg("Filtering devices")

		devices, err = manager.Apply(ctx, compiled, devices)
		if err != nil {
			return err
		}
	}

	if deviceJSON {
		return printJSON(cmd.OutOrStdout(), devices)
	}
	printDevices(cmd.OutOrStdout(), devices)
	return nil
}

func printDevices(w io.Writer, devices []filter.Device) {
	if len(devices) == 0 {
		fmt.Fprintln(w, "No devices found matching the filter criteria.")
		return
	}

	fmt.Fprintln(w, strings.Repeat("━", 80))
	fmt.Fprintf(w, "%-10s %-24s %-26s %-12s %s\n", "CATEGORY", "ID", "NAME", "VIEWPORT", "SCALE")
	fmt.Fprintln(w, strings.Repeat("━", 80))
	for _, d := range devices {
		name := d.Name
		if len(name) > 24 {
			name = name[:21] + "..."
		}
		viewport := fmt.Sprintf("%dx%d", d.Width, d.Height)
		fmt.Fprintf(w, "%-10s %-24s %-26s %-12s %gx\n", d.Category, d.ID, name, viewport, d.DeviceScaleFactor)
	}
	fmt.Fprintln(w, strings.Repeat("━", 80))
	fmt.Fprintf(w, "%d devices\n", len(devices))
}

// capabilitiesCmd represents the capabilities command
var capabilitiesCmd = &cobra.Command{
	Use:   "capabilities",
	Short: "Show service version and features",
	Long: `Show the service version and feature flags. With --require the command
fails unless the service is at least that version; with --feature it fails
unless every named feature is enabled.`,
	Args: cobra.NoArgs,
	RunE: runCapabilities,
}

func init() {
	rootCmd.AddCommand(capabilitiesCmd)
	capabilitiesCmd.Flags().StringVar(&requiredVersion, "require", "", "minimum service version, e.g. 2.3.0")
	capabilitiesCmd.Flags().StringSliceVar(&requireFeatures, "feature", nil, "features that must be enabled")
}

func runCapabilities(cmd *cobra.Command, args []string) error {
	caps, err := client.Capabilities(cmd.Context())
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "SnapAPI version: %s\n", caps.Version)
	if err := printJSON(w, caps.Capabilities); err != nil {
		return err
	}

	if requiredVersion != "" && !caps.AtLeast(requiredVersion) {
		return fmt.Errorf("service version %s does not satisfy required %s", caps.Version, requiredVersion)
	}
	for _, feature := range requireFeatures {
		if !caps.Supports(feature) {
			return fmt.Errorf("service does not support %q", feature)
		}
	}
	return nil
}

// usageCmd represents the usage command
var usageCmd = &cobra.Command{
	Use:   "usage",
	Short: "Show API quota usage",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		usage, err := client.Usage(cmd.Context())
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "Used:      %d\n", usage.Used)
		fmt.Fprintf(w, "Limit:     %d\n", usage.Limit)
		fmt.Fprintf(w, "Remaining: %d\n", usage.Remaining)
		if usage.ResetAt != "" {
			fmt.Fprintf(w, "Resets at: %s\n", usage.ResetAt)
		}
		if usage.Exhausted() {
			logger.Warn().Msg("Quota exhausted")
		}
		return nil
	},
}

// pingCmd represents the ping command
var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Test connection to SnapAPI",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprintf(cmd.OutOrStdout(), "Testing connection to SnapAPI at %s...\n", client.BaseURL())

		ping, err := client.Ping(cmd.Context())
		if err != nil {
			return err
		}
		if !ping.OK() {
			return fmt.Errorf("service reported status %q", ping.Status)
		}

		fmt.Fprintln(cmd.OutOrStdout(), "✓ Connection successful!")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(usageCmd, pingCmd)
}
