package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/chrisuehlinger/zeditor/editor"
	"github.com/chrisuehlinger/zeditor/script"
	"github.com/chrisuehlinger/zeditor/ui"
)

const sample = `<p>Welcome to zeditor.</p><p>Type a link like example.com and press Enter.</p>`

func main() {
	headless := flag.Bool("headless", false, "print the normalized content and its serialization, then exit")
	typed := flag.String("type", "", "text to type at the end of the content before printing (headless only)")
	debug := flag.Bool("debug", false, "enable debug logging")
	var scripts []string
	flag.Func("script", "JavaScript token matcher to load (repeatable)", func(path string) error {
		scripts = append(scripts, path)
		return nil
	})
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: zeditor [flags] [file.html]\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if err := run(*headless, *typed, scripts, flag.Arg(0), logger); err != nil {
		logger.Error("zeditor failed", "err", err)
		os.Exit(1)
	}
}

func run(headless bool, typed string, scripts []string, path string, logger *slog.Logger) error {
	markup, title := sample, "zeditor"
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		markup, title = string(data), "zeditor - "+filepath.Base(path)
	}

	opts := editor.Options{Logger: logger}
	for _, p := range scripts {
		source, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		name := strings.TrimSuffix(filepath.Base(p), filepath.Ext(p))
		m, err := script.Load(name, string(source))
		if err != nil {
			return fmt.Errorf("loading %s: %w", p, err)
		}
		opts.Matchers = append(opts.Matchers, m)
	}

	ed, err := editor.New(markup, opts)
	if err != nil {
		return err
	}

	if !headless {
		ui.NewDebugger(ed, title, logger).Run()
		return nil
	}
	defer ed.Close()

	if typed != "" {
		session := ui.NewSession(ed, title)
		session.MoveCaret(len(ed.Root().TextContent()))
		session.Type(typed)
	}
	fmt.Println(ed.HTML())
	fmt.Println(ed.Serialize())
	return nil
}
