// Binary watchctl is a small interactive console for editing the
// tascope configuration and launching the server.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"tascope/internal/config"
)

const defaultConfigPath = "internal/config/config.yaml"

func main() {
	reader := bufio.NewReader(os.Stdin)

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	for {
		fmt.Println("\n=== Tascope Control ===")
		fmt.Println("1) Show configuration summary")
		fmt.Println("2) Edit watchlist")
		fmt.Println("3) Edit watch rules")
		fmt.Println("4) Edit holdings")
		fmt.Println("5) Save config")
		fmt.Println("6) Launch server")
		fmt.Println("7) Reload config from disk")
		fmt.Println("0) Exit")
		fmt.Print("Select option: ")

		input, _ := reader.ReadString('\n')
		choice := strings.TrimSpace(input)

		switch choice {
		case "1":
			printSummary(cfg)
		case "2":
			editWatchlist(reader, cfg)
		case "3":
			editWatch(reader, cfg)
		case "4":
			editHoldings(reader, cfg)
		case "5":
			if err := saveConfig(cfg); err != nil {
				fmt.Fprintf(os.Stderr, "save failed: %v\n", err)
			} else {
				fmt.Println("config saved")
			}
		case "6":
			launchServer(reader)
		case "7":
			reloaded, err := loadConfig()
			if err != nil {
				fmt.Fprintf(os.Stderr, "reload failed: %v\n", err)
			} else {
				cfg = reloaded
				fmt.Println("config reloaded")
			}
		case "0":
			return
		default:
			fmt.Println("unknown option")
		}
	}
}

func printSummary(cfg *config.Config) {
	fmt.Println("\n--- Configuration Summary ---")
	fmt.Printf("Provider: %s\n", cfg.Provider.Name)
	fmt.Println("Watchlist:", strings.Join(cfg.Watchlist.Symbols, ", "))
	fmt.Printf("Period: %s\n", cfg.Watchlist.Period)
	fmt.Println("Watch rules:", strings.Join(cfg.Watch.Modes, ", "))
	fmt.Printf("RSI bands: overbought %.1f | oversold %.1f\n", cfg.Watch.Params.RSIOverbought, cfg.Watch.Params.RSIOversold)
	fmt.Printf("Cache: %s (ttl %ds)\n", cfg.Cache.Path, cfg.Cache.TTLSecs)
	fmt.Printf("API addr: %s | metrics addr: %s\n", cfg.Server.Addr, cfg.App.MetricsAddr)
	if len(cfg.Portfolio.Holdings) == 0 {
		fmt.Println("Holdings: none")
		return
	}
	fmt.Println("Holdings:")
	for _, h := range cfg.Portfolio.Holdings {
		fmt.Printf("  %-6s %.4f @ $%.2f\n", h.Symbol, h.Qty, h.CostBasis)
	}
}

func editWatchlist(reader *bufio.Reader, cfg *config.Config) {
	fmt.Println("\n--- Edit Watchlist ---")
	fmt.Printf("Current symbols: %s\n", strings.Join(cfg.Watchlist.Symbols, ", "))
	fmt.Print("Enter symbols comma-separated (blank to keep): ")
	if line, _ := reader.ReadString('\n'); strings.TrimSpace(line) != "" {
		parts := strings.Split(strings.TrimSpace(line), ",")
		cfg.Watchlist.Symbols = nil
		for _, p := range parts {
			if trimmed := strings.ToUpper(strings.TrimSpace(p)); trimmed != "" {
				cfg.Watchlist.Symbols = append(cfg.Watchlist.Symbols, trimmed)
			}
		}
	}
	fmt.Printf("Period [%s]: ", cfg.Watchlist.Period)
	if line, _ := reader.ReadString('\n'); strings.TrimSpace(line) != "" {
		cfg.Watchlist.Period = strings.TrimSpace(line)
	}
}

func editWatch(reader *bufio.Reader, cfg *config.Config) {
	fmt.Println("\n--- Edit Watch Rules ---")
	fmt.Printf("Current rules: %s\n", strings.Join(cfg.Watch.Modes, ", "))
	fmt.Print("Enter rules comma-separated, from rsi_band/macd_cross/sma_cross (blank to keep): ")
	if line, _ := reader.ReadString('\n'); strings.TrimSpace(line) != "" {
		parts := strings.Split(strings.TrimSpace(line), ",")
		cfg.Watch.Modes = nil
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				cfg.Watch.Modes = append(cfg.Watch.Modes, trimmed)
			}
		}
	}
	cfg.Watch.Params.RSIOverbought = promptFloat(reader, "RSI overbought", cfg.Watch.Params.RSIOverbought)
	cfg.Watch.Params.RSIOversold = promptFloat(reader, "RSI oversold", cfg.Watch.Params.RSIOversold)
}

func editHoldings(reader *bufio.Reader, cfg *config.Config) {
	fmt.Println("\n--- Edit Holdings ---")
	if len(cfg.Portfolio.Holdings) > 0 {
		for _, h := range cfg.Portfolio.Holdings {
			fmt.Printf("  %-6s %.4f @ $%.2f\n", h.Symbol, h.Qty, h.CostBasis)
		}
	}
	fmt.Print("Symbol to add/update (blank to cancel): ")
	line, _ := reader.ReadString('\n')
	symbol := strings.ToUpper(strings.TrimSpace(line))
	if symbol == "" {
		return
	}
	qty := promptFloat(reader, "Quantity (0 removes)", 0)
	if qty == 0 {
		cfg.Portfolio.Holdings = removeHolding(cfg.Portfolio.Holdings, symbol)
		fmt.Printf("%s removed\n", symbol)
		return
	}
	cost := promptFloat(reader, "Cost basis per share", 0)
	for i := range cfg.Portfolio.Holdings {
		if cfg.Portfolio.Holdings[i].Symbol == symbol {
			cfg.Portfolio.Holdings[i].Qty = qty
			cfg.Portfolio.Holdings[i].CostBasis = cost
			return
		}
	}
	cfg.Portfolio.Holdings = append(cfg.Portfolio.Holdings, config.Holding{Symbol: symbol, Qty: qty, CostBasis: cost})
}

func removeHolding(holdings []config.Holding, symbol string) []config.Holding {
	out := holdings[:0]
	for _, h := range holdings {
		if h.Symbol != symbol {
			out = append(out, h)
		}
	}
	return out
}

func launchServer(reader *bufio.Reader) {
	fmt.Println("Launching server (Ctrl+C to stop)...")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cmd := exec.CommandContext(ctx, "go", "run", "./cmd/server")
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Stdin = os.Stdin

	if err := cmd.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to start server: %v\n", err)
		return
	}

	go func() {
		_ = cmd.Wait()
		cancel()
	}()

	fmt.Print("\nPress ENTER to stop the server and return to menu...")
	_, _ = reader.ReadString('\n')
	cancel()
	time.Sleep(500 * time.Millisecond)
}

func promptFloat(reader *bufio.Reader, label string, current float64) float64 {
	fmt.Printf("%s [%.2f]: ", label, current)
	line, _ := reader.ReadString('\n')
	line = strings.TrimSpace(line)
	if line == "" {
		return current
	}
	val, err := strconv.ParseFloat(line, 64)
	if err != nil {
		fmt.Printf("invalid number, keeping %.2f\n", current)
		return current
	}
	return val
}

func loadConfig() (*config.Config, error) {
	return config.Load(locateConfig())
}

func saveConfig(cfg *config.Config) error {
	return config.Save(locateConfig(), cfg)
}

func locateConfig() string {
	if filepath.IsAbs(defaultConfigPath) {
		return defaultConfigPath
	}
	return filepath.Clean(defaultConfigPath)
}
