package main

import (
	"flag"
	"fmt"
	"net"
	"os"
	"sort"

	"github.com/rs/zerolog"

	"github.com/nhdewitt/http-server/internal/request"
)

var addr = flag.String("addr", ":42069", "address to listen on")

func main() {
	flag.Parse()
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	listener, err := net.Listen("tcp", *addr)
	if err != nil {
		logger.Fatal().Err(err).Msg("error listening")
	}
	defer listener.Close()

	logger.Info().Str("addr", *addr).Msg("listening for TCP traffic")
	for {
		c, err := listener.Accept()
		if err != nil {
			logger.Fatal().Err(err).Msg("error accepting connection")
		}
		logger.Info().Stringer("remote", c.RemoteAddr()).Msg("connection accepted")

		req, err := request.RequestFromReader(c)
		c.Close()
		if err != nil {
			logger.Warn().Err(err).Stringer("remote", c.RemoteAddr()).Msg("error parsing request")
			continue
		}

		fmt.Println("Request line:")
		fmt.Printf("- Method: %s\n", req.RequestLine.Method)
		fmt.Printf("- Target: %s\n", req.RequestLine.RequestTarget)
		fmt.Printf("- Version: %s\n", req.RequestLine.HttpVersion)
		fmt.Println("Headers:")
		keys := make([]string, 0, len(req.Headers))
		for k := range req.Headers {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Printf("- %s: %s\n", k, req.Headers[k])
		}
		fmt.Println("Body:")
		fmt.Println(string(req.Body))
	}
}
