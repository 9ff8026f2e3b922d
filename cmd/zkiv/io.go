package main

import (
	"io"
	"os"

	"github.com/GaloisInc/zkinterface-sieve/sink"
)

// "-" names standard input or output.
func openSource(path string) (*sink.Source, io.Closer, error) {
	if path == "-" {
		return sink.NewSource(os.Stdin), io.NopCloser(nil), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	return sink.NewSource(f), f, nil
}

func openStreamSink(path string) (*sink.StreamSink, io.Closer, error) {
	if path == "-" {
		return sink.NewStreamSink(os.Stdout), io.NopCloser(nil), nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	return sink.NewStreamSink(f), f, nil
}

func readMessages(path string) (*sink.MemorySink, error) {
	src, closer, err := openSource(path)
	if err != nil {
		return nil, err
	}
	defer closer.Close()
	var mem sink.MemorySink
	if err := sink.ReadAll(src, &mem); err != nil {
		return nil, err
	}
	return &mem, nil
}
