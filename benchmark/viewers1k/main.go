package main

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/structpb"
	iotGrpc "liyu1981.xyz/iot-datalogger/pkg/grpc"
)

var maxViewers int = 1000
var actionsPerViewer int = 3
var httpHostPort string = "127.0.0.1:1080"
var grpcHostPort string = "127.0.0.1:10801"

var grpcClient *iotGrpc.DashboardServiceClient

var rnd *rand.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
var rndMu sync.Mutex

func main() {
	viewerIDs := make([]string, maxViewers)
	for i := 0; i < maxViewers; i++ {
		viewerIDs[i] = uuid.NewString()
	}
	fmt.Printf("generated %v viewer IDs\n", maxViewers)

	resp, err := http.Get(fmt.Sprintf("http://%s/healthz", httpHostPort))
	if err != nil {
		log.Fatal("Failed to connect to HTTP server:", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		log.Fatal("HTTP server not available")
	}

	fmt.Printf("http server verified\n")

	conn, err := grpc.NewClient(grpcHostPort, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		log.Fatal("Failed to connect to gRPC server:", err)
	}
	defer conn.Close()
	grpcClient = iotGrpc.NewDashboardServiceClient(conn)

	fmt.Printf("gRPC server verified and connected\n")

	var limited, failed sync.Map

	startTime := time.Now()
	wg := sync.WaitGroup{}
	for i := 0; i < maxViewers; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			doActions(viewerIDs[i], &limited, &failed)
		}()
	}
	wg.Wait()
	usedTime := time.Since(startTime)

	fmt.Printf(
		"\n\rdid actions for %v viewers: used time=%v seconds, throughput=%v action/second, limited=%v, failed=%v\n",
		maxViewers, usedTime.Seconds(), float64(maxViewers*actionsPerViewer)/usedTime.Seconds(),
		count(&limited), count(&failed),
	)
}

func count(m *sync.Map) int {
	n := 0
	m.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

func flipCoin() bool {
	rndMu.Lock()
	defer rndMu.Unlock()
	return rnd.Int31n(100000)%2 == 0
}

func pause() time.Duration {
	rndMu.Lock()
	defer rndMu.Unlock()
	return time.Duration(100+rnd.Int31n(1000)) * time.Millisecond
}

type outcome int

const (
	outcomeOK outcome = iota
	outcomeLimited
	outcomeFailed
)

func doActions(viewerID string, limited, failed *sync.Map) {
	actions := []func() outcome{listDevices, listAlarms, getHistory}
	actionNames := []string{"ListDevices", "ListAlarms", "GetHistory"}

	for index, action := range actions[:actionsPerViewer] {
		key := fmt.Sprintf("%s/%s", viewerID, actionNames[index])
		switch action() {
		case outcomeLimited:
			limited.Store(key, true)
		case outcomeFailed:
			failed.Store(key, true)
		}
		fmt.Printf("\rexecuted action %v for viewer %v", actionNames[index], viewerID)
		time.Sleep(pause())
	}
}

func httpGet(path string) outcome {
	resp, err := http.Get(fmt.Sprintf("http://%s%s", httpHostPort, path))
	if err != nil {
		fmt.Printf("\nerror: %v\n", err)
		return outcomeFailed
	}
	defer resp.Body.Close()
	switch resp.StatusCode {
	case http.StatusOK:
		return outcomeOK
	case http.StatusTooManyRequests:
		return outcomeLimited
	default:
		return outcomeFailed
	}
}

func grpcOutcome(resp *structpb.Struct, err error) outcome {
	if err != nil {
		return outcomeLimited
	}
	if !resp.GetFields()["status"].GetStructValue().GetFields()["success"].GetBoolValue() {
		return outcomeFailed
	}
	return outcomeOK
}

func listDevices() outcome {
	if flipCoin() {
		return httpGet("/devices")
	}
	return grpcOutcome(grpcClient.ListDevices(context.Background()))
}

func listAlarms() outcome {
	if flipCoin() {
		return httpGet("/alarms")
	}
	return grpcOutcome(grpcClient.ListAlarms(context.Background(), &structpb.Struct{}))
}

func getHistory() outcome {
	today := time.Now().Format("02-01-2006")
	if flipCoin() {
		return httpGet(fmt.Sprintf("/devices/%s/history?start=%s&end=%s", "D1", today, today))
	}
	req, _ := structpb.NewStruct(map[string]any{"deviceId": "D1", "start": today, "end": today})
	return grpcOutcome(grpcClient.GetHistory(context.Background(), req))
}
