package main

import (
	"log"
	"net/http"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/example/claim-verifier/internal/agent"
	"github.com/example/claim-verifier/internal/api"
	"github.com/example/claim-verifier/internal/ocr"
	"github.com/example/claim-verifier/internal/providers/assistant"
	"github.com/example/claim-verifier/internal/providers/search"
	"github.com/example/claim-verifier/internal/tools"
)

func main() {
	if err := godotenv.Load(); err == nil {
		log.Printf("loaded .env")
	}

	addr := ":8080"
	if v := os.Getenv("PORT"); v != "" {
		addr = ":" + v
	}

	client := assistant.NewFromEnv()
	coord := assistant.NewCoordinator(client)

	toolModel := envStr("TOOL_MODEL", "gpt-4o")
	registry := tools.NewRegistry()
	registry.Register(&tools.NumericVerifyTool{})
	registry.Register(&tools.WebSearchTool{Coordinator: coord, Transport: search.NewDuckDuckGo(), Model: toolModel})
	registry.Register(&tools.CredibilityTool{Coordinator: coord, Model: toolModel})

	ag := agent.New(coord, registry, envStr("AGENT_MODEL", "gpt-5-mini"))
	ag.MaxRounds = envInt("AGENT_MAX_ROUNDS", ag.MaxRounds)
	ag.MaxToolCalls = envInt("AGENT_MAX_TOOL_CALLS", ag.MaxToolCalls)

	srv := &api.Server{Agent: ag, Extractor: ocr.NewFromEnv()}
	mux := http.NewServeMux()
	srv.RegisterRoutes(mux)

	log.Printf("server listening on %s", addr)
	if err := http.ListenAndServe(addr, cors(mux)); err != nil {
		log.Fatal(err)
	}
}

// simple CORS middleware for the browser extension
func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func envStr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return def
}
