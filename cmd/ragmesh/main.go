// Command ragmesh runs an interactive retrieval-augmented chat session
// against a local Ollama instance, with semantic memory stored in Qdrant.
//
// Configuration comes from an optional YAML file and RAGMESH_* environment
// variables. Inside the session, "/remember <text>" stores a fact in memory
// and "/quit" exits; everything else is sent to the model as a user turn.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/hupe1980/ragmesh"
	"github.com/hupe1980/ragmesh/config"
	"github.com/hupe1980/ragmesh/memory"
	"github.com/hupe1980/ragmesh/model/ollama"
	"github.com/hupe1980/ragmesh/runner"
	"github.com/hupe1980/ragmesh/tool"
	"github.com/hupe1980/ragmesh/vectorstore"
	"github.com/hupe1980/ragmesh/vectorstore/qdrant"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file (optional)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	var tools []tool.Tool
	tools = append(tools, tool.NewPageImageTool())
	if base := os.Getenv("RAGMESH_CONFLUENCE_URL"); base != "" {
		tools = append(tools, tool.NewConfluenceSearchTool(
			base,
			os.Getenv("RAGMESH_CONFLUENCE_EMAIL"),
			os.Getenv("RAGMESH_CONFLUENCE_TOKEN"),
		))
	}

	agent := ragmesh.FromConfig(cfg, tools...)

	// A separate memory handle serves the /remember command; the agent's own
	// memory is wired inside FromConfig.
	var mem memory.Memory
	if cfg.Retrieval.Enabled {
		gateway := ollama.New(cfg.Ollama.Host, func(o *ollama.Options) {
			o.Model = cfg.Ollama.Model
			o.EmbedModel = cfg.Ollama.EmbedModel
		})
		policy := vectorstore.AppendIfExists
		if cfg.Qdrant.ResetOnReuse {
			policy = vectorstore.ResetOnExists
		}
		store := qdrant.New(cfg.Qdrant.URL, func(o *qdrant.Options) {
			o.ResetPolicy = policy
			o.APIKey = cfg.Qdrant.APIKey
		})
		mem = memory.NewVectorMemory(gateway, store, cfg.Qdrant.Collection, cfg.Qdrant.Dimensions,
			func(o *memory.Options) { o.Quantization = cfg.Qdrant.Quantization })
	}

	fmt.Println("ragmesh — type a question, /remember <text> to store a fact, /quit to exit")

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		switch {
		case line == "/quit" || line == "/exit":
			return
		case strings.HasPrefix(line, "/remember "):
			if mem == nil {
				fmt.Println("memory is disabled (retrieval.enabled=false)")
				continue
			}
			text := strings.TrimSpace(strings.TrimPrefix(line, "/remember "))
			if err := mem.Remember(context.Background(), []string{text}); err != nil {
				fmt.Fprintf(os.Stderr, "remember failed: %v\n", err)
				continue
			}
			fmt.Println("remembered.")
		default:
			answer, err := agent.Ask(context.Background(), line)
			if err != nil {
				if fatal(err) {
					log.Fatalf("turn failed: %v", err)
				}
				fmt.Fprintf(os.Stderr, "turn failed: %v\n", err)
				continue
			}
			fmt.Println(answer)
		}
	}

	if err := scanner.Err(); err != nil {
		log.Fatalf("read input: %v", err)
	}
}

// fatal reports whether an error leaves the session in a state not worth
// retrying interactively. A tool loop bound is recoverable (the transcript is
// intact and the next question may succeed); a store failure on an aborted
// turn means retrieval is broken for every following turn.
func fatal(err error) bool {
	if errors.Is(err, runner.ErrToolLoopExceeded) {
		return false
	}
	var storeErr *vectorstore.StoreError
	return errors.As(err, &storeErr)
}
