package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"typematch/internal/config"
	"typematch/internal/trace"
)

// stringFlag returns the value of a persistent flag when it was set on the
// command line, fallback otherwise.
func stringFlag(cmd *cobra.Command, name, fallback string) (string, error) {
	flags := cmd.Root().PersistentFlags()
	v, err := flags.GetString(name)
	if err != nil {
		return "", fmt.Errorf("failed to get %s flag: %w", name, err)
	}
	if !flags.Changed(name) {
		return fallback, nil
	}
	return v, nil
}

// setupTracing builds the tracer from flags over cfg and attaches it to the
// command context. The returned cleanup flushes and closes it.
func setupTracing(cmd *cobra.Command, cfg config.TraceConfig) (trace.Tracer, func(), error) {
	flags := cmd.Root().PersistentFlags()
	output, err := stringFlag(cmd, "trace", cfg.Output)
	if err != nil {
		return nil, nil, err
	}
	levelStr, err := stringFlag(cmd, "trace-level", cfg.Level)
	if err != nil {
		return nil, nil, err
	}
	modeStr, err := stringFlag(cmd, "trace-mode", cfg.Mode)
	if err != nil {
		return nil, nil, err
	}
	formatStr, err := flags.GetString("trace-format")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get trace-format flag: %w", err)
	}
	ringSize, err := flags.GetInt("trace-ring-size")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get trace-ring-size flag: %w", err)
	}
	heartbeatInterval, err := flags.GetDuration("trace-heartbeat")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get trace-heartbeat flag: %w", err)
	}

	level, err := trace.ParseLevel(levelStr)
	if err != nil {
		return nil, nil, err
	}
	// --trace without a level means phase tracing
	if level == trace.LevelOff && flags.Changed("trace") && output != "" {
		level = trace.LevelPhase
	}
	if level == trace.LevelOff {
		cmd.SetContext(trace.WithTracer(cmd.Context(), trace.Nop))
		return trace.Nop, func() {}, nil
	}
	mode, err := trace.ParseMode(modeStr)
	if err != nil {
		return nil, nil, err
	}
	format, err := trace.ParseFormat(formatStr)
	if err != nil {
		return nil, nil, err
	}

	tracer, err := trace.New(trace.Config{
		Level:      level,
		Mode:       mode,
		Format:     format,
		Output:     outputWriter(cmd, output),
		OutputPath: output,
		RingSize:   ringSize,
		Heartbeat:  heartbeatInterval,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create tracer: %w", err)
	}
	cmd.SetContext(trace.WithTracer(cmd.Context(), tracer))

	var heartbeat *trace.Heartbeat
	if heartbeatInterval > 0 {
		heartbeat = trace.StartHeartbeat(tracer, heartbeatInterval)
	}
	cleanup := func() {
		if heartbeat != nil {
			heartbeat.Stop()
		}
		if err := tracer.Flush(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "trace: flush error: %v\n", err)
		}
		if err := tracer.Close(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "trace: close error: %v\n", err)
		}
	}
	return tracer, cleanup, nil
}
