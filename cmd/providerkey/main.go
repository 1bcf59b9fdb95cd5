package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"reelgen/internal/infra"
	"reelgen/internal/infra/credentials"
)

// envKeys names the environment variable read when -key is omitted.
var envKeys = map[string]string{
	credentials.ProviderGemini:      "GEMINI_API_KEY",
	credentials.ProviderReplicate:   "REPLICATE_API_TOKEN",
	credentials.ProviderHuggingFace: "HUGGINGFACE_TOKEN",
	credentials.ProviderDashScope:   "DASHSCOPE_API_KEY",
	credentials.ProviderOpenAI:      "OPENAI_API_KEY",
	credentials.ProviderArk:         "ARK_API_KEY",
}

func main() {
	var (
		keyFlag      string
		providerFlag string
		deleteFlag   bool
	)
	flag.StringVar(&keyFlag, "key", "", "secret for the selected provider (falls back to its environment variable)")
	flag.StringVar(&providerFlag, "provider", credentials.ProviderGemini, "credential to configure: "+strings.Join(credentials.KnownProviders, ", "))
	flag.BoolVar(&deleteFlag, "delete", false, "remove the stored credential instead of setting it")
	flag.Parse()

	_ = godotenv.Load()

	provider := strings.TrimSpace(strings.ToLower(providerFlag))
	envKey, ok := envKeys[provider]
	if !ok {
		fmt.Fprintf(os.Stderr, "unsupported provider %q\n", providerFlag)
		os.Exit(1)
	}

	key := strings.TrimSpace(keyFlag)
	if key == "" {
		key = strings.TrimSpace(os.Getenv(envKey))
	}
	if key == "" && !deleteFlag {
		fmt.Fprintf(os.Stderr, "%s secret is required via -key or %s\n", provider, envKey)
		os.Exit(1)
	}

	dbURL := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if dbURL == "" {
		fmt.Fprintln(os.Stderr, "DATABASE_URL is required")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create pool: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	logger := infra.NewLogger("cli").With().Str("cmd", "providerkey").Str("provider", provider).Logger()
	store := credentials.NewStore(infra.NewSQLRunner(pool, &logger))

	if deleteFlag {
		err = store.Delete(ctx, provider)
	} else {
		err = store.Set(ctx, provider, key)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to update %s credential: %v\n", provider, err)
		os.Exit(1)
	}

	if deleteFlag {
		fmt.Printf("%s credential removed\n", provider)
		return
	}
	fmt.Printf("%s credential stored successfully\n", provider)
}
