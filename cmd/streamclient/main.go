// Package main runs a demo WebSocket client that submits a tiny problem,
// starts a heuristic solve, and prints convergence ticks as they arrive.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/gorilla/websocket"
)

func main() {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	base := fmt.Sprintf("http://localhost:%s", port)

	problem := []byte(`{
		"vehicles":[{"id":1,"startLocation":{"latitude":40.7,"longitude":-74.0},"priceKm":1.2}],
		"orders":[
			{"id":1,"pickupLocation":{"latitude":40.71,"longitude":-74.01},"deliveryLocation":{"latitude":40.75,"longitude":-73.98},"loadFactor":1},
			{"id":2,"pickupLocation":{"latitude":40.72,"longitude":-73.99},"deliveryLocation":{"latitude":40.76,"longitude":-73.95},"loadFactor":1}
		],
		"constraints":{"maxTotalDistance":500}
	}`)

	req, err := http.NewRequest(http.MethodPost, base+"/v1/problems", bytes.NewReader(problem))
	if err != nil {
		log.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = resp.Body.Close() }()
	var created struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		log.Fatal(err)
	}
	log.Printf("problem id: %s", created.ID)

	solveReq, err := http.NewRequest(http.MethodPost, base+"/v1/problems/"+created.ID+"/solve/heuristic", bytes.NewReader([]byte(`{"objective":"DISTANCE"}`)))
	if err != nil {
		log.Fatal(err)
	}
	solveReq.Header.Set("Content-Type", "application/json")
	solveResp, err := http.DefaultClient.Do(solveReq)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = solveResp.Body.Close() }()
	var accepted struct {
		RunID string `json:"runId"`
	}
	if err := json.NewDecoder(solveResp.Body).Decode(&accepted); err != nil {
		log.Fatal(err)
	}
	log.Printf("run id: %s", accepted.RunID)

	u := url.URL{Scheme: "ws", Host: "localhost:" + port, Path: "/v1/runs/" + accepted.RunID + "/events/ws"}
	c, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		log.Fatal("dial:", err)
	}
	defer func() { _ = c.Close() }()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			var m map[string]any
			if err := c.ReadJSON(&m); err != nil {
				log.Printf("read: %v", err)
				return
			}
			log.Printf("WS <- %v", m)
			if m["type"] == "run.completed" || m["type"] == "run.failed" {
				return
			}
		}
	}()

	select {
	case <-time.After(30 * time.Second):
	case <-done:
	}
}
