package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	mediagent "github.com/forgeworks/mediagent"
	"github.com/forgeworks/mediagent/src/config"
	"github.com/forgeworks/mediagent/src/providers/imagegen"
	"github.com/forgeworks/mediagent/src/providers/videogen"
	"github.com/forgeworks/mediagent/src/storage"
	"github.com/forgeworks/mediagent/src/subagent"
	"github.com/forgeworks/mediagent/src/tools"
)

func main() {
	sessionID := flag.String("session-id", "cli:studio", "Session identifier attached to invocations")
	storeKind := flag.String("store", "fs", "Blob store backend: fs, memory, mongo, or postgres")
	foundryID := flag.String("foundry-agent", "", "Optional hosted agent id to register as a delegated tool")
	flag.Parse()

	ctx := context.Background()
	cfg := config.FromEnv()

	store, closeStore, err := buildStore(ctx, *storeKind, cfg.Storage)
	if err != nil {
		log.Fatalf("failed to initialise blob store: %v", err)
	}
	defer closeStore()

	imageClient := imagegen.New(cfg.Image)
	videoClient := videogen.New(cfg.Video)

	registry := mediagent.NewRegistry(
		&tools.GenerateImagesTool{Client: imageClient, Store: store, Cfg: cfg.Image},
		&tools.EditImageTool{Client: imageClient, Store: store, Cfg: cfg.Image},
		&tools.CaptureImageTool{Client: imageClient, Store: store},
		&tools.GenerateVideoTool{Client: videoClient, Store: store, Cfg: cfg.Video},
	)
	if *foundryID != "" {
		delegate := subagent.NewFoundryAgent(*foundryID, "delegated_agent",
			"Forwards a query plus additional instructions to a hosted agent and relays its progress.", cfg.Agent)
		if err := registry.Register(mediagent.NewSubAgentTool(delegate)); err != nil {
			log.Fatalf("failed to register delegated agent: %v", err)
		}
	}
	runner := mediagent.NewRunner(registry)

	sink := mediagent.NewChannelNotifier(16)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for ev := range sink.Events() {
			if ev.Artifact != nil {
				fmt.Printf("  [%s #%d] %s -> %s\n", ev.Phase, ev.Seq, ev.Message, ev.Artifact.Ref)
				continue
			}
			fmt.Printf("  [%s #%d] %s\n", ev.Phase, ev.Seq, ev.Message)
		}
	}()
	defer func() {
		sink.Close()
		<-done
	}()

	fmt.Println("Media studio. Commands:")
	fmt.Println("  /tools                      list registered tools")
	fmt.Println("  image <n> <description>     generate n images")
	fmt.Println("  video <seconds> <description>  generate a video")
	fmt.Println("  ask <query>                 forward to the delegated agent (requires -foundry-agent)")
	fmt.Println("Empty line exits.")

	reader := bufio.NewReader(os.Stdin)
	for {
		fmt.Print("> ")
		line, err := reader.ReadString('\n')
		if err != nil {
			log.Fatalf("read input: %v", err)
		}
		line = strings.TrimSpace(line)
		if line == "" {
			fmt.Println("Goodbye!")
			return
		}

		name, args, ok := parseCommand(line)
		if !ok {
			if line == "/tools" {
				for _, spec := range registry.Specs() {
					fmt.Printf("- %s: %s\n", spec.Name, spec.Description)
				}
				continue
			}
			fmt.Println("Unrecognised command.")
			continue
		}

		res, err := runner.Invoke(ctx, name, *sessionID, args, sink)
		if err != nil {
			fmt.Printf("error: %v\n", err)
			continue
		}
		fmt.Printf("%s\n", res.Summary)
	}
}

func parseCommand(line string) (string, map[string]any, bool) {
	fields := strings.SplitN(line, " ", 3)
	switch fields[0] {
	case "image":
		if len(fields) < 3 {
			return "", nil, false
		}
		n, err := strconv.Atoi(fields[1])
		if err != nil {
			return "", nil, false
		}
		return "generate_images", map[string]any{"description": fields[2], "count": n}, true
	case "video":
		if len(fields) < 3 {
			return "", nil, false
		}
		s, err := strconv.Atoi(fields[1])
		if err != nil {
			return "", nil, false
		}
		return "generate_video", map[string]any{"description": fields[2], "seconds": s}, true
	case "ask":
		if len(fields) < 2 {
			return "", nil, false
		}
		return "delegated_agent", map[string]any{"query": strings.TrimPrefix(line, "ask ")}, true
	}
	return "", nil, false
}

func buildStore(ctx context.Context, kind string, cfg config.Storage) (storage.BlobStore, func(), error) {
	switch kind {
	case "memory":
		return storage.NewMemoryStore(), func() {}, nil
	case "fs":
		return storage.FSStore{BaseDir: cfg.Dir, BaseURL: cfg.BaseURL}, func() {}, nil
	case "mongo":
		store, err := storage.NewMongoStore(ctx, cfg.MongoURI, cfg.MongoDatabase, "media")
		if err != nil {
			return nil, nil, err
		}
		if err := store.CreateSchema(ctx); err != nil {
			store.Close()
			return nil, nil, err
		}
		return store, func() { store.Close() }, nil
	case "postgres":
		store, err := storage.NewPostgresStore(ctx, cfg.PostgresURL)
		if err != nil {
			return nil, nil, err
		}
		if err := store.CreateSchema(ctx); err != nil {
			store.Close()
			return nil, nil, err
		}
		return store, func() { store.Close() }, nil
	}
	return nil, nil, fmt.Errorf("unknown store backend %q", kind)
}
