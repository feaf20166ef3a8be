package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand/v2"
	"net/http"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	vegeta "github.com/tsenart/vegeta/v12/lib"
)

const (
	mockPort = 9091
	appPort  = 8081
)

// read endpoints hit in round-robin order
var endpoints = []string{
	"/v1/rankings?limit=10",
	"/v1/feed",
	"/v1/deals",
	"/v1/catalog",
	"/v1/benchmarks",
}

func main() {
	duration := flag.Duration("duration", 10*time.Second, "Duration of the test")
	rate := flag.Int("rate", 50, "Requests per second")
	chaos := flag.Bool("chaos", false, "Simulate random client disconnections")
	models := flag.Int("models", 200, "Number of models the mock provider publishes")
	flag.Parse()

	go startMockProvider(*models)

	fmt.Println("Building application...")
	buildCmd := exec.Command("go", "build", "-o", "bin/radar", "./cmd/radar")
	buildCmd.Stdout = os.Stdout
	buildCmd.Stderr = os.Stderr
	if err := buildCmd.Run(); err != nil {
		log.Fatalf("Failed to build app: %v", err)
	}

	configFile := "loadtest_config.yaml"
	if err := os.WriteFile(configFile, []byte(loadConfig), 0o644); err != nil {
		log.Fatalf("Failed to write config: %v", err)
	}
	defer os.Remove(configFile)
	defer os.Remove("loadtest.db")
	defer os.Remove("loadtest_feed.json")

	fmt.Println("Starting application...")
	cmd := exec.Command("./bin/radar", "serve", "--config", configFile, "--port", strconv.Itoa(appPort), "--no-color")
	cmd.Env = append(os.Environ(), "RADAR_LOG_LEVEL=error")

	logFile, _ := os.Create("loadtest_server.log")
	defer logFile.Close()
	cmd.Stdout = logFile
	cmd.Stderr = logFile

	if err := cmd.Start(); err != nil {
		log.Fatalf("Failed to start app: %v", err)
	}
	defer func() {
		if cmd.Process != nil {
			_ = cmd.Process.Kill()
		}
	}()

	base := fmt.Sprintf("http://localhost:%d", appPort)
	waitForApp(base + "/health")

	fmt.Println("Seeding snapshots with one pipeline run...")
	resp, err := http.Post(base+"/v1/pipeline/runs?wait=true", "application/json", nil)
	if err != nil {
		log.Fatalf("Pipeline run failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		log.Fatalf("Pipeline run returned %d", resp.StatusCode)
	}

	done := make(chan struct{})
	go monitorResources(base+"/metrics", cmd.Process.Pid, done)

	if *chaos {
		fmt.Println("CHAOS MODE ENABLED: Starting Chaos Monkey sidecar...")
		concurrency := min(max(*rate/10, 5), 50)
		go startChaosMonkey(base+"/v1/feed", concurrency, done)
	}

	fmt.Printf("Running read benchmark: %s duration, %d req/s over %d endpoints\n", *duration, *rate, len(endpoints))

	var next atomic.Uint64
	targeter := func(t *vegeta.Target) error {
		i := next.Add(1) - 1
		t.Method = http.MethodGet
		t.URL = base + endpoints[i%uint64(len(endpoints))]
		t.Header = http.Header{"Accept": []string{"application/json"}}
		return nil
	}

	attacker := vegeta.NewAttacker(vegeta.KeepAlive(true))
	var metrics vegeta.Metrics
	for res := range attacker.Attack(targeter, vegeta.Rate{Freq: *rate, Per: time.Second}, *duration, "Radar") {
		metrics.Add(res)
	}
	metrics.Close()

	close(done)

	fmt.Println("--------------------------------------------------")
	fmt.Println("99th percentile: ", metrics.Latencies.P99)
	fmt.Println("Mean:            ", metrics.Latencies.Mean)
	fmt.Println("Max:             ", metrics.Latencies.Max)
	fmt.Printf("Success:         %.2f%%\n", metrics.Success*100)
	fmt.Printf("Throughput:      %.2f req/s\n", metrics.Throughput)
	fmt.Println("Status codes:    ", metrics.StatusCodes)
	fmt.Println("--------------------------------------------------")

	if len(metrics.Errors) > 0 {
		fmt.Println("Error Set (first 5 unique):")
		seen := make(map[string]bool)
		for _, msg := range metrics.Errors {
			if !seen[msg] && len(seen) < 5 {
				fmt.Println(msg)
				seen[msg] = true
			}
		}
	}
}

func startChaosMonkey(url string, concurrency int, done chan struct{}) {
	fmt.Printf("Starting Chaos Monkey with %d concurrent disrupters (random disconnects 1-200ms)\n", concurrency)
	var wg sync.WaitGroup
	wg.Add(concurrency)

	for i := 0; i < concurrency; i++ {
		go func() {
			defer wg.Done()
			client := &http.Client{}

			for {
				select {
				case <-done:
					return
				default:
					timeout := time.Duration(rand.IntN(200)+1) * time.Millisecond

					ctx, cancel := context.WithTimeout(context.Background(), timeout)
					req, _ := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
					resp, err := client.Do(req)
					if err == nil {
						resp.Body.Close()
					}
					cancel()

					time.Sleep(time.Duration(rand.IntN(50)) * time.Millisecond)
				}
			}
		}()
	}
}

// startMockProvider publishes n models over an OpenAI-compatible /models endpoint.
func startMockProvider(n int) {
	families := []string{"gpt-4o", "gpt-4o-mini", "llama-3.1-70b", "llama-3.1-8b", "mixtral-8x7b", "gemini-1.5-flash", "claude-3-5-sonnet"}

	var b strings.Builder
	b.WriteString(`{"object":"list","data":[`)
	for i := 0; i < n; i++ {
		if i > 0 {
			b.WriteByte(',')
		}
		fmt.Fprintf(&b, `{"id":"%s-v%d","object":"model","created":1687882411,"owned_by":"mock"}`, families[i%len(families)], i)
	}
	b.WriteString(`]}`)
	body := []byte(b.String())

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/models", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(body)
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	_ = http.ListenAndServe(fmt.Sprintf(":%d", mockPort), mux)
}

// monitorResources samples the server's own process gauges from /metrics and
// its CPU usage from ps.
func monitorResources(metricsURL string, pid int, done chan struct{}) {
	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()

	fmt.Println("\n--- Resource Usage (/metrics + ps) ---")
	fmt.Printf("% -10s % -10s % -10s % -10s\n", "Time", "Heap(MB)", "RSS(MB)", "CPU(%)")

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			gauges, err := scrape(metricsURL, "go_memstats_heap_inuse_bytes", "process_resident_memory_bytes")
			if err != nil {
				fmt.Printf("DEBUG: monitorResources failed to scrape metrics: %v\n", err)
				continue
			}

			cpu := 0.0
			out, err := exec.Command("ps", "-p", strconv.Itoa(pid), "-o", "%cpu").Output()
			if err == nil {
				lines := strings.Split(strings.TrimSpace(string(out)), "\n")
				if len(lines) >= 2 {
					cpu, _ = strconv.ParseFloat(strings.TrimSpace(lines[1]), 64)
				}
			}

			fmt.Printf("% -10s % -10.2f % -10.2f % -10.2f\n",
				time.Now().Format("15:04:05"),
				gauges["go_memstats_heap_inuse_bytes"]/1024/1024,
				gauges["process_resident_memory_bytes"]/1024/1024,
				cpu,
			)
		}
	}
}

// scrape reads unlabelled samples of the named metrics from the text exposition format.
func scrape(url string, names ...string) (map[string]float64, error) {
	resp, err := http.Get(url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	want := make(map[string]bool, len(names))
	for _, n := range names {
		want[n] = true
	}

	out := make(map[string]float64, len(names))
	sc := bufio.NewScanner(resp.Body)
	for sc.Scan() {
		name, value, ok := strings.Cut(sc.Text(), " ")
		if !ok || !want[name] {
			continue
		}
		if v, err := strconv.ParseFloat(value, 64); err == nil {
			out[name] = v
		}
	}
	return out, sc.Err()
}

func waitForApp(url string) {
	for i := 0; i < 20; i++ {
		resp, err := http.Get(url)
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(500 * time.Millisecond)
	}
	log.Fatal("App timed out")
}

var loadConfig = fmt.Sprintf(`
server:
  env: production
rate_limit:
  requests_per_second: 0
log:
  level: error
  format: json
database:
  path: loadtest.db
feed:
  path: loadtest_feed.json
benchmark:
  real_mode: never
providers:
  - name: Mock
    type: openai
    api_base: "http://localhost:%d/v1"
`, mockPort)
