// The standard map/reduce example: counting words.
// Adapted from examples/wordcount.go (the Hadoop-streaming word count job)
// and distwc.c (the original C driver). Argument parsing moves from the
// stdlib flag package to Cobra/pflag, and the map/reduce callbacks talk
// directly to mapreduce.RunContext instead of going through dmrgo's
// Emitter/MRProtocol wire-format types.
// Copyright (c) 2011 Damian Gryski <damian@gryski.com>
// License: GPLv3 or, at your option, any later version
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mihir1708/mapreduce"
)

var (
	workers    int
	partitions uint32
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wordcount [files...]",
		Short: "Count word frequencies across the given files using the mapreduce engine",
		Args:  cobra.MinimumNArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWordCount(cmd.Context(), args)
		},
	}

	cmd.Flags().IntVar(&workers, "workers", 5, "number of pool worker goroutines")
	cmd.Flags().Uint32Var(&partitions, "partitions", 10, "number of reduce partitions")

	return cmd
}

func runWordCount(ctx context.Context, files []string) error {
	log, _ := zap.NewProduction()
	defer log.Sync()

	err := mapreduce.Run(ctx, files, wordCountMap, wordCountReduce, workers, partitions)
	if err != nil {
		log.Error("word count run failed", zap.Error(err))
		return err
	}
	return nil
}

// wordCountMap reads path line by line and emits (word, "1") for every
// whitespace-delimited token, mirroring distwc.c's Map.
func wordCountMap(rc *mapreduce.RunContext, path string) {
	f, err := os.Open(path)
	if err != nil {
		rc.Logger().Warn("failed to open input file", zap.String("path", path), zap.Error(err))
		return
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		for _, word := range strings.Fields(scanner.Text()) {
			rc.Emit(word, "1")
		}
	}
	if err := scanner.Err(); err != nil {
		rc.Logger().Warn("error scanning input file", zap.String("path", path), zap.Error(err))
	}
}

// wordCountReduce drains every "1" emitted for key in partition, counts
// them, and appends "key: count" to result-<partition>.txt, matching
// distwc.c's Reduce and its append-mode output file.
func wordCountReduce(rc *mapreduce.RunContext, key string, partition uint32) {
	count := 0
	for {
		_, ok := rc.GetNext(key, partition)
		if !ok {
			break
		}
		count++
	}

	name := fmt.Sprintf("result-%d.txt", partition)
	f, err := os.OpenFile(name, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		rc.Logger().Error("failed to open output file", zap.String("path", name), zap.Error(err))
		return
	}
	defer f.Close()

	fmt.Fprintf(f, "%s: %d\n", key, count)
}
