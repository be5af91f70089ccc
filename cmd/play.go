package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/desertthunder/ymx/internal/audio"
	"github.com/desertthunder/ymx/internal/playback"
	"github.com/desertthunder/ymx/internal/shared"
	"github.com/urfave/cli/v3"
)

// Play loads the initial queue and runs a playback session until the user quits.
//
// Account lookup, the initial track list and audio initialization are fatal;
// everything after that is reported as updates and never stops the session.
func (r *Runner) Play(ctx context.Context, cmd *cli.Command) error {
	useTUI := cmd.Bool("tui")
	if useTUI {
		// Redirect logs to file to avoid interfering with TUI rendering
		fileLogger, f, err := shared.NewFileLogger(r.config.Log.File)
		if err != nil {
			return fmt.Errorf("failed to create file logger: %w", err)
		}
		defer f.Close()
		shared.SetLogLevel(fileLogger, r.logger.GetLevel())
		r.SetLogger(fileLogger)
	}

	client, resolver, err := r.services(ctx)
	if err != nil {
		return err
	}

	uid, err := client.AccountIdentity(ctx)
	if err != nil {
		return fmt.Errorf("failed to identify account: %w", err)
	}

	factory := r.sinkFactory
	if factory == nil {
		factory = audio.NewSpeakerFactory(r.config.Player.InitialVolume, r.config.Player.InitialSpeed)
	}
	output, err := audio.NewChannel(factory)
	if err != nil {
		return err
	}

	recorder, closeHistory := r.openHistory()
	defer closeHistory()

	sessionID := shared.GenerateID()
	logger := shared.WithLogger(r.logger, "session", sessionID[:8])

	events := make(chan playback.Event, 16)
	updates := make(chan playback.Update, 64)

	engine, err := playback.NewEngine(playback.EngineOpts{
		Resolver:  resolver,
		Output:    output,
		Updates:   updates,
		Recorder:  recorder,
		Logger:    logger,
		SessionID: sessionID,
	})
	if err != nil {
		return err
	}

	session := playback.NewSession(playback.SessionOpts{
		Engine:        engine,
		Library:       client,
		UID:           uid,
		Events:        events,
		Updates:       updates,
		Interval:      r.config.Player.TickInterval(),
		ShuffleOnLoad: cmd.Bool("shuffle") || r.config.Player.Shuffle,
		Logger:        logger,
	})

	if index := cmd.Int("playlist"); index >= 0 {
		err = session.LoadPlaylist(ctx, index)
	} else {
		err = session.LoadFavorites(ctx)
	}
	if err != nil {
		output.Stop()
		return fmt.Errorf("failed to load initial queue: %w", err)
	}
	r.logMissingDurations(engine.Tracks())

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	steps := playback.Steps{Volume: r.config.Player.VolumeStep, Speed: r.config.Player.SpeedStep}
	if useTUI {
		return r.runTUI(ctx, session, events, updates, steps)
	}
	return r.runLines(ctx, session, events, updates, steps)
}

// runLines drives a session from line commands on the runner's input and prints update messages.
func (r *Runner) runLines(ctx context.Context, session *playback.Session, events chan playback.Event, updates chan playback.Update, steps playback.Steps) error {
	r.writePlain("%s\n\n", playback.CommandHelp)

	printed := make(chan struct{})
	go func() {
		defer close(printed)
		for u := range updates {
			if u.Kind == playback.PrefetchStarted {
				continue
			}
			r.writePlain("%s\n", u.Message)
		}
	}()

	go r.readCommands(ctx, events, steps)

	err := session.Run(ctx)
	close(updates)
	<-printed
	return err
}

// readCommands parses input lines into events until EOF, which closes the event channel.
func (r *Runner) readCommands(ctx context.Context, events chan<- playback.Event, steps playback.Steps) {
	defer close(events)

	scanner := bufio.NewScanner(r.input)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		ev, err := playback.ParseCommand(line, steps)
		if err != nil {
			r.logger.Warn("invalid command", "line", line, "error", err)
			continue
		}

		select {
		case events <- ev:
		case <-ctx.Done():
			return
		}
		if ev.Kind == playback.Quit {
			return
		}
	}
	if err := scanner.Err(); err != nil {
		r.logger.Error("failed to read commands", "error", err)
	}
}
