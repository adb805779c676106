package main

import (
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	arena "github.com/pavanmanishd/fixedarena"
)

func run(cfg config, stdout, stderr io.Writer) (err error) {
	log := zap.NewNop()
	if cfg.Verbose {
		zc := zap.NewDevelopmentConfig()
		zc.OutputPaths = []string{"stderr"}
		l, err := zc.Build()
		if err != nil {
			return errors.Wrap(err, "build logger")
		}
		log = l
		defer func() { _ = log.Sync() }()
	}

	opts := []arena.Option{arena.WithLogger(log), arena.WithName("demo")}
	switch cfg.Backend {
	case "", "heap":
		opts = append(opts, arena.WithBackend(arena.HeapBackend{}))
	case "mmap":
		opts = append(opts, arena.WithBackend(arena.MmapBackend{}))
	default:
		return errors.Errorf("unknown backend %q", cfg.Backend)
	}
	if cfg.TypeAlign {
		opts = append(opts, arena.WithTypeAlignment())
	}

	styled, err := useColor(cfg.Color, stdout)
	if err != nil {
		return err
	}

	a, err := arena.New(cfg.Capacity, cfg.Alignment, opts...)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := a.Close(); err == nil {
			err = cerr
		}
	}()

	first, second, err := halves(a, cfg.Capacity/2)
	if err != nil {
		return err
	}
	if _, err := arena.Alloc[uint8](a); err != nil {
		if !arena.IsAllocError(err) {
			return err
		}
		fmt.Fprintf(stderr, "arena full after two halves: %v\n", err)
	}

	steps := []func(){
		func() {
			for i := range first {
				first[i] = byte(i)
			}
		},
		func() {
			for i := range second {
				second[i] = byte(len(second) - 1 - i)
			}
		},
		func() { clear(first) },
		func() { clear(second) },
	}
	for _, step := range steps {
		step()
		out, err := a.Dump()
		if err != nil {
			return err
		}
		fmt.Fprintln(stdout, renderDump(out, a.Offset(), styled))
	}

	if cfg.Stats == "yaml" {
		b, err := yaml.Marshal(a.Metrics())
		if err != nil {
			return errors.Wrap(err, "marshal stats")
		}
		fmt.Fprint(stdout, string(b))
	} else if cfg.Stats != "" && cfg.Stats != "none" {
		return errors.Errorf("unknown stats format %q", cfg.Stats)
	}
	return nil
}

// page is one half of the default 512-byte arena.
type page = [256]byte

// halves carves two adjacent regions of half bytes each. The default layout
// uses typed page values; other capacities fall back to byte runs.
func halves(a *arena.Arena, half int) (first, second []byte, err error) {
	if half != len(page{}) {
		firstRef, err := a.AllocBytes(half)
		if err != nil {
			return nil, nil, err
		}
		secondRef, err := a.AllocBytes(half)
		if err != nil {
			return nil, nil, err
		}
		if first, err = firstRef.Get(a); err != nil {
			return nil, nil, err
		}
		second, err = secondRef.Get(a)
		return first, second, err
	}

	firstRef, err := arena.Alloc[page](a)
	if err != nil {
		return nil, nil, err
	}
	secondRef, err := arena.Alloc[page](a)
	if err != nil {
		return nil, nil, err
	}
	p1, err := firstRef.Get(a)
	if err != nil {
		return nil, nil, err
	}
	p2, err := secondRef.Get(a)
	if err != nil {
		return nil, nil, err
	}
	return p1[:], p2[:], nil
}

func useColor(mode string, w io.Writer) (bool, error) {
	switch mode {
	case "always":
		return true, nil
	case "never":
		return false, nil
	case "", "auto":
		f, ok := w.(*os.File)
		return ok && term.IsTerminal(int(f.Fd())), nil
	default:
		return false, errors.Errorf("unknown color mode %q", mode)
	}
}
