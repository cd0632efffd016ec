package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestLoggerInit(t *testing.T) {
	Convey("Given the global logger", t, func() {
		Convey("When initialized with defaults", func() {
			So(Init(), ShouldBeNil)

			Convey("Then Get returns a usable logger", func() {
				So(Get(), ShouldNotBeNil)
				So(Sync(), ShouldBeNil)
				So(func() { Get().Info(context.Background(), "hello", String("k", "v")) }, ShouldNotPanic)
			})

			Convey("And Named returns a usable logger", func() {
				So(Named("test"), ShouldNotBeNil)
			})
		})

		Convey("When initialized with an unknown format", func() {
			err := Init(WithFormat("xml"))

			Convey("Then it fails", func() {
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "unknown log format")
			})
		})
	})
}

func TestLoggerOutput(t *testing.T) {
	Convey("Given a JSON logger writing to a buffer", t, func() {
		var buf bytes.Buffer
		var lvl slog.LevelVar
		l, err := New(&buf, FormatJSON, &lvl)
		So(err, ShouldBeNil)
		ctx := context.Background()

		Convey("When logging with fields", func() {
			l.With(String("run_id", "abc")).Warn(ctx, "row rejected", Int("line", 7), Error(errors.New("boom")))

			Convey("Then the record carries every field and the caller", func() {
				var rec map[string]any
				So(json.Unmarshal(buf.Bytes(), &rec), ShouldBeNil)
				So(rec["msg"], ShouldEqual, "row rejected")
				So(rec["level"], ShouldEqual, "WARN")
				So(rec["run_id"], ShouldEqual, "abc")
				So(rec["line"], ShouldEqual, 7.0)
				So(rec["error"], ShouldEqual, "boom")
				So(rec["source"], ShouldContainSubstring, "logger_test.go")
			})
		})

		Convey("When the level is above the message level", func() {
			lvl.Set(slog.LevelError)
			l.Info(ctx, "quiet")

			Convey("Then nothing is written", func() {
				So(buf.Len(), ShouldEqual, 0)
			})
		})

		Convey("When using a named logger", func() {
			l.Named("ranking").Info(ctx, "ranked", String("metric", "priority"))

			Convey("Then fields are grouped under the name", func() {
				So(strings.Contains(buf.String(), `"ranking":{`), ShouldBeTrue)
			})
		})
	})
}

func TestSetLevelString(t *testing.T) {
	Convey("Given level strings", t, func() {
		So(SetLevelString("debug"), ShouldBeNil)
		So(levelVar.Level(), ShouldEqual, slog.LevelDebug)
		So(SetLevelString(" WARNING "), ShouldBeNil)
		So(levelVar.Level(), ShouldEqual, slog.LevelWarn)
		So(SetLevelString(""), ShouldBeNil)
		So(levelVar.Level(), ShouldEqual, slog.LevelInfo)
		So(SetLevelString("loud"), ShouldNotBeNil)
	})
}

func TestNop(t *testing.T) {
	Convey("Given a nop logger", t, func() {
		So(func() { Nop().Named("x").With(Bool("b", true)).Error(context.Background(), "dropped") }, ShouldNotPanic)
	})
}
