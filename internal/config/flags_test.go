package config_test

import (
	"errors"
	"testing"

	"github.com/okian/tradeboard/internal/config"
	"github.com/smartystreets/goconvey/convey"
	"github.com/spf13/cobra"
)

func newFlagCommand(args ...string) *cobra.Command {
	cmd := &cobra.Command{Use: "tradeboard", RunE: func(*cobra.Command, []string) error { return nil }}
	config.RegisterFlags(cmd)
	cmd.SetArgs(args)
	return cmd
}

func TestApplyFlags(t *testing.T) {
	convey.Convey("Given a command with config flags", t, func() {
		convey.Convey("When no flag is set", func() {
			cmd := newFlagCommand()
			convey.So(cmd.Execute(), convey.ShouldBeNil)
			cfg := config.New()

			err := config.ApplyFlags(cfg, cmd.Flags())

			convey.Convey("Then the config is unchanged", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldResemble, config.New())
			})
		})

		convey.Convey("When overrides are given", func() {
			cmd := newFlagCommand("-i", "data.csv", "-n", "3", "--mode", "top", "--metric", "priority", "--metric", "import_usd", "-o", "json")
			convey.So(cmd.Execute(), convey.ShouldBeNil)
			cfg := config.New()

			err := config.ApplyFlags(cfg, cmd.Flags())

			convey.Convey("Then they replace the defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Input, convey.ShouldEqual, "data.csv")
				convey.So(cfg.TopN, convey.ShouldEqual, 3)
				convey.So(cfg.Mode, convey.ShouldEqual, "top")
				convey.So(cfg.Metrics, convey.ShouldResemble, []string{"priority", "import_usd"})
				convey.So(cfg.Output, convey.ShouldEqual, "json")
			})
		})

		convey.Convey("When a layout and explicit skip rows are given", func() {
			cmd := newFlagCommand("--layout", "byvalue", "--skip-rows", "4")
			convey.So(cmd.Execute(), convey.ShouldBeNil)
			cfg := config.New()

			err := config.ApplyFlags(cfg, cmd.Flags())

			convey.Convey("Then the preset columns apply and skip rows win", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Layout, convey.ShouldEqual, "byvalue")
				convey.So(cfg.Columns.ImportUSD, convey.ShouldEqual, 33)
				convey.So(cfg.Columns.ExportUSD, convey.ShouldEqual, 10)
				convey.So(cfg.SkipRows, convey.ShouldEqual, 4)
			})
		})

		convey.Convey("When a flag value is invalid", func() {
			cmd := newFlagCommand("--mode", "sideways")
			convey.So(cmd.Execute(), convey.ShouldBeNil)

			err := config.ApplyFlags(config.New(), cmd.Flags())

			convey.Convey("Then validation fails", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "Mode")
			})
		})

		convey.Convey("When the layout is unknown", func() {
			cmd := newFlagCommand("--layout", "v9")
			convey.So(cmd.Execute(), convey.ShouldBeNil)

			err := config.ApplyFlags(config.New(), cmd.Flags())

			convey.Convey("Then ErrInvalidConfig is returned", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})
	})
}
