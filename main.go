package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"git.unix.lgbt/diamondburned/macd/macd"
	"git.unix.lgbt/diamondburned/macd/macd/journal"
	"git.unix.lgbt/diamondburned/macd/macd/usage"
	"github.com/pkg/errors"
)

var (
	inputFile   string
	journalFile string
	procfsMount string
)

func init() {
	flag.StringVar(&inputFile, "i", "", "process list file path")
	flag.StringVar(&journalFile, "j", "", "optional JSON journal file path")
	flag.StringVar(&procfsMount, "proc", usage.DefaultMountPoint, "procfs mount point")
	flag.Usage = func() {
		f := func(f string, v ...interface{}) {
			fmt.Fprintf(flag.CommandLine.Output(), f, v...)
		}

		f("Usage:\n")
		f("  %s -i <process list> [-j <journal>]\n", filepath.Base(os.Args[0]))
		f("  %s -j <journal> status\n", filepath.Base(os.Args[0]))
		f("\n")
		f("Flags:\n")
		flag.PrintDefaults()
	}
	flag.Parse()
}

func main() {
	var err error
	switch flag.Arg(0) {
	case "status":
		err = status()
	case "":
		err = start()
	default:
		log.Fatalf("unknown subcommand %q\n", flag.Arg(0))
	}

	if err != nil {
		log.Fatalln(err)
	}
}

func status() error {
	if journalFile == "" {
		return errors.New("missing -j path to journal file")
	}

	ev, err := journal.ReadLatestFromFile(journalFile, (&macd.EventReport{}).Type())
	if err != nil {
		return errors.Wrap(err, "failed to read latest report")
	}

	return journal.NewHumanWriter(os.Stdout).Write(ev)
}

func start() error {
	if inputFile == "" {
		return errors.New("missing -i path to process list")
	}

	list, err := macd.ReadProcessListFile(inputFile)
	if err != nil {
		return errors.Wrap(err, "failed to read process list")
	}

	sampler, err := usage.NewProcSampler(procfsMount)
	if err != nil {
		return err
	}

	journaler := macd.Journaler(journal.NewHumanWriter(os.Stdout))

	if journalFile != "" {
		j, err := journal.NewFileLockJournaler(journalFile)
		if err != nil {
			return errors.Wrap(err, "failed to acquire journal lock")
		}
		defer j.Close()

		journaler = journal.MultiWriter(j, journaler)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	state := macd.NewState(list.TimeLimit)
	macd.WatchStop(ctx, state)

	journaler.Write(&macd.EventStarted{
		Time:      state.Start,
		File:      inputFile,
		TimeLimit: timeLimitSeconds(list.TimeLimit),
	})

	table, err := macd.LaunchAll(list, macd.NewLauncher(), journaler)
	if err != nil {
		return errors.Wrap(err, "failed to launch processes")
	}

	macd.TryWatch(ctx, inputFile, journaler)

	sup := macd.NewSupervisor(state, table, sampler, journaler)
	sup.Run()

	return nil
}

func timeLimitSeconds(limit time.Duration) int {
	if limit < 0 {
		return -1
	}
	return int(limit / time.Second)
}
