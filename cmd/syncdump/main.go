package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"

	"github.com/coreman2200/funtimes-demosync/internal/app"
	"github.com/coreman2200/funtimes-demosync/internal/automation"
	"github.com/coreman2200/funtimes-demosync/internal/codec"
	"github.com/coreman2200/funtimes-demosync/internal/config"
	"github.com/coreman2200/funtimes-demosync/internal/render"
)

func main() {
	var (
		projectPath string
		exportPath  string
		binaryPath  string
		from, to    uint32
		step        uint32
		useSpew     bool
	)
	pflag.StringVarP(&projectPath, "project", "p", "", "path to project YAML")
	pflag.StringVarP(&exportPath, "export", "o", "", "write tracks and tempo in the binary project format")
	pflag.StringVarP(&binaryPath, "binary", "b", "", "take tracks and tempo from a binary project file instead of the YAML")
	pflag.Uint32Var(&from, "from", 0, "first row")
	pflag.Uint32Var(&to, "to", 32, "last row")
	pflag.Uint32Var(&step, "step", 1, "row increment")
	pflag.BoolVar(&useSpew, "spew", false, "dump whole frames with spew")
	pflag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if projectPath == "" {
		log.Fatal().Msg("provide --project path to a project YAML")
	}
	if step == 0 {
		step = 1
	}

	proj, err := config.LoadProject(projectPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", projectPath).Msg("load project")
	}

	if exportPath != "" {
		if err := export(exportPath, proj); err != nil {
			log.Fatal().Err(err).Str("path", exportPath).Msg("export")
		}
		log.Info().Str("path", exportPath).Msg("exported")
	}

	var core *app.Core
	if binaryPath != "" {
		core, err = loadBinary(binaryPath, proj)
	} else {
		core, err = app.FromProject(proj, app.Viewport{})
	}
	if err != nil {
		log.Fatal().Err(err).Msg("wire project")
	}
	core.SetPaused(true)

	out := bufio.NewWriter(os.Stdout)
	defer out.Flush()
	if err := dump(out, core, proj, from, to, step, useSpew); err != nil {
		log.Fatal().Err(err).Msg("dump")
	}
}

func dump(w io.Writer, core *app.Core, proj *config.Project, from, to, step uint32, useSpew bool) error {
	var f render.Frame
	for row := from; row <= to; row += step {
		core.SetRow(row)
		if err := core.Build(&f); err != nil {
			return fmt.Errorf("row %d: %w", row, err)
		}
		if useSpew {
			spew.Fdump(w, f)
		} else if err := writeFrame(w, core, &f, proj); err != nil {
			return err
		}
		if row > to-step { // guard uint32 wrap
			break
		}
	}
	return nil
}

func writeFrame(w io.Writer, core *app.Core, f *render.Frame, proj *config.Project) error {
	vals := make([]string, 0, core.TrackCount())
	for i := 0; i < core.TrackCount(); i++ {
		idx, err := core.Binding(i)
		if err != nil {
			return err
		}
		name := fmt.Sprintf("track_%d", i)
		if i < len(proj.Tracks) {
			name = proj.Tracks[i].Name
			if proj.Tracks[i].Bind != "" {
				name = proj.Tracks[i].Bind
			}
		}
		vals = append(vals, fmt.Sprintf("%s=%.4f", name, f.Vars[idx]))
	}
	ops := make([]string, len(f.Ops))
	for i, op := range f.Ops {
		ops[i] = op.String()
	}
	_, err := fmt.Fprintf(w, "row %5d  t=%9.2fms  %s  | %s\n", f.Row, f.TimeMS, strings.Join(vals, " "), strings.Join(ops, " "))
	return err
}

func export(path string, proj *config.Project) error {
	tracks, err := proj.BuildTracks()
	if err != nil {
		return err
	}
	fh, err := os.Create(path)
	if err != nil {
		return err
	}
	defer fh.Close()
	if err := codec.EncodeProject(fh, codec.Tempo{BPM: proj.BPM, RPB: proj.RowsPerBeat}, tracks); err != nil {
		return err
	}
	return fh.Close()
}

// loadBinary builds a core whose tracks and tempo come from a binary project
// file; the timeline and bindings still come from proj.
func loadBinary(path string, proj *config.Project) (*app.Core, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()
	tempo, tracks, rep, err := codec.DecodeProject(fh)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	ev := log.Info()
	if rep.SkippedKeys > 0 {
		ev = log.Warn()
	}
	ev.Str("path", path).
		Int("tracks", len(tracks)).
		Int("keys", rep.Keys).
		Int("skipped_keys", rep.SkippedKeys).
		Float64("bpm", tempo.BPM).
		Uint8("rpb", tempo.RPB).
		Msg("binary project loaded")
	return app.FromDevice(proj, automation.NewDeviceWithTracks(tempo.BPM, tempo.RPB, tracks), app.Viewport{})
}
