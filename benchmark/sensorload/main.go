package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"math"
	"math/rand"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

var (
	maxSensors   = flag.Int("sensors", 1000, "number of sensor ids to post readings for")
	readingsEach = flag.Int("readings", 12, "readings posted per sensor")
	httpHostPort = flag.String("addr", "127.0.0.1:1080", "sensor api host:port")
)

var rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
var rndMu sync.Mutex

var failures atomic.Int64

func main() {
	flag.Parse()

	resp, err := http.Get(fmt.Sprintf("http://%s/healthz", *httpHostPort))
	if err != nil {
		log.Fatal("Failed to connect to HTTP server:", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		log.Fatal("HTTP server not available")
	}

	fmt.Printf("http server verified\n")

	startTime := time.Now()
	wg := sync.WaitGroup{}
	for sensorID := range *maxSensors {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range *readingsEach {
				postReading(sensorID)
			}
			fmt.Printf("\rposted readings for sensor %v", sensorID)
		}()
	}
	wg.Wait()
	usedTime := time.Since(startTime)

	total := *maxSensors * *readingsEach
	fmt.Printf(
		"\rposted %v readings for %v sensors: used time=%v seconds, throughput=%v action/second\n",
		total, *maxSensors, usedTime.Seconds(), float64(total)/usedTime.Seconds(),
	)

	startTime = time.Now()
	wg = sync.WaitGroup{}
	for sensorID := range *maxSensors {
		wg.Add(1)
		go func() {
			defer wg.Done()
			getReadings(sensorID)
		}()
	}
	wg.Wait()
	usedTime = time.Since(startTime)

	fmt.Printf(
		"\rread latest readings for %v sensors: used time=%v seconds, throughput=%v action/second\n",
		*maxSensors, usedTime.Seconds(), float64(*maxSensors)/usedTime.Seconds(),
	)
	fmt.Printf("failed requests: %v\n", failures.Load())
}

func flipCoin() bool {
	rndMu.Lock()
	defer rndMu.Unlock()
	return rnd.Int31n(100000)%2 == 0
}

func rndFloat64(min, max float64, decimal int) float64 {
	rndMu.Lock()
	val := min + rnd.Float64()*(max-min)
	rndMu.Unlock()
	multiplier := math.Pow10(decimal)
	return math.Round(val*multiplier) / multiplier
}

func do(req *http.Request, wantStatus int) {
	req.Header.Set("X-Request-ID", uuid.NewString())

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		failures.Add(1)
		fmt.Printf("\nerror: %v\n", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != wantStatus {
		failures.Add(1)
		body, _ := io.ReadAll(resp.Body)
		fmt.Printf("\nresponse status code %v != %v: %s\n", resp.StatusCode, wantStatus, body)
	}
}

// postReading alternates between the query string and the JSON body form.
func postReading(sensorID int) {
	value := rndFloat64(-20.0, 45.0, 2)

	var req *http.Request
	if flipCoin() {
		req, _ = http.NewRequest(http.MethodPost,
			fmt.Sprintf("http://%s/sensor/%d?value=%.2f", *httpHostPort, sensorID, value), nil)
	} else {
		jsonData, _ := json.Marshal(map[string]float64{"value": value})
		req, _ = http.NewRequest(http.MethodPost,
			fmt.Sprintf("http://%s/sensor/%d", *httpHostPort, sensorID), bytes.NewBuffer(jsonData))
		req.Header.Set("Content-Type", "application/json")
	}

	do(req, http.StatusCreated)
}

func getReadings(sensorID int) {
	req, _ := http.NewRequest(http.MethodGet, fmt.Sprintf("http://%s/sensor/%d", *httpHostPort, sensorID), nil)
	req.Header.Set("Accept", "application/json")
	do(req, http.StatusOK)
}
