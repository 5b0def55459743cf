package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/joho/godotenv"

	"github.com/wolfman30/sales-call-agent/cmd/mainconfig"
	"github.com/wolfman30/sales-call-agent/internal/app/bootstrap"
	appconfig "github.com/wolfman30/sales-call-agent/internal/config"
	"github.com/wolfman30/sales-call-agent/internal/conversation"
	"github.com/wolfman30/sales-call-agent/internal/llm"
	"github.com/wolfman30/sales-call-agent/pkg/logging"
)

// Sends a short sales dialogue to every configured provider and prints the
// reply, latency and token usage.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}
	providers := flag.String("providers", "", "comma separated providers to try (default: LLM_PROVIDER and LLM_SECONDARY_PROVIDER)")
	timeout := flag.Duration("timeout", 30*time.Second, "overall timeout")
	flag.Parse()

	cfg := appconfig.Load()
	logger := logging.New("warn")

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	names := providerList(*providers, cfg)
	if len(names) == 0 {
		log.Fatal("no provider configured; set LLM_PROVIDER or pass -providers")
	}

	req := llm.Request{
		System: []string{conversation.DefaultSystemInstruction},
		Messages: []llm.Message{
			{Role: llm.RoleAssistant, Content: conversation.DefaultGreeting},
			{Role: llm.RoleUser, Content: "Hi, I run a small bakery and our Instagram isn't bringing in customers."},
			{Role: llm.RoleAssistant, Content: "Thanks for sharing that! Social media can be a great channel for bakeries. How often are you posting right now?"},
			{Role: llm.RoleUser, Content: "Maybe once a week. How much would it cost to get help with that?"},
		},
		MaxTokens:   150,
		Temperature: 0.7,
	}

	fmt.Println(strings.Repeat("=", 60))
	fmt.Println("LLM Provider Test")
	fmt.Println(strings.Repeat("=", 60))

	failed := 0
	for i, name := range names {
		fmt.Printf("\n[%d] %s\n", i+1, name)
		one := *cfg
		one.LLMProvider = name
		one.LLMSecondaryProvider = ""
		one.Env = "production"

		client, err := bootstrap.BuildLLMClient(ctx, &one, awsConfig(ctx, &one, name), logger)
		if err != nil {
			fmt.Printf("    FAIL: could not build client: %v\n", err)
			failed++
			continue
		}
		start := time.Now()
		resp, err := client.Complete(ctx, req)
		elapsed := time.Since(start).Round(time.Millisecond)
		if err != nil {
			fmt.Printf("    FAIL (%v): %v\n", elapsed, err)
			failed++
			continue
		}
		fmt.Printf("    OK (%v): %s\n", elapsed, strings.TrimSpace(resp.Text))
		fmt.Printf("    Tokens: in=%d, out=%d\n", resp.Usage.InputTokens, resp.Usage.OutputTokens)
	}

	fmt.Println()
	fmt.Println(strings.Repeat("=", 60))
	fmt.Printf("%d of %d providers responded\n", len(names)-failed, len(names))
	if failed > 0 {
		os.Exit(1)
	}
}

func providerList(flagValue string, cfg *appconfig.Config) []string {
	raw := flagValue
	if strings.TrimSpace(raw) == "" {
		raw = cfg.LLMProvider + "," + cfg.LLMSecondaryProvider
	}
	seen := map[string]bool{}
	var out []string
	for _, p := range strings.Split(raw, ",") {
		p = strings.ToLower(strings.TrimSpace(p))
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out
}

func awsConfig(ctx context.Context, cfg *appconfig.Config, provider string) *aws.Config {
	if provider != "bedrock" {
		return nil
	}
	awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
	if err != nil {
		fmt.Printf("    aws config: %v\n", err)
		return nil
	}
	return &awsCfg
}
