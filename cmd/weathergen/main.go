package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"strings"
	"syscall"
	"time"

	jsoniter "github.com/json-iterator/go"

	"vane/internal/config"
	"vane/internal/simulate"
	"vane/sink"
	kafkasink "vane/sink/kafka"
	stdoutsink "vane/sink/stdout"
)

var json = jsoniter.ConfigFastest

func main() {
	var (
		brokers      = flag.String("brokers", "localhost:9092", "comma-separated Kafka brokers")
		liveTopic    = flag.String("live-topic", "weather", "topic for current readings")
		historyTopic = flag.String("history-topic", "weather_history", "topic for the history feed")
		interval     = flag.Duration("interval", 10*time.Second, "time between reading batches")
		seed         = flag.Int64("seed", time.Now().UnixNano(), "random walk seed")
		sinkName     = flag.String("sink", "kafka", "sink driver (kafka|stdout)")
		stationsPath = flag.String("stations", "", "stations file (default fleet when empty)")
	)
	flag.Parse()

	fleet, err := config.LoadStations(*stationsPath)
	if err != nil {
		log.Fatalf("[weathergen] stations: %v", err)
	}

	drv, err := sink.NewAdapter(*sinkName)
	if err != nil {
		log.Fatalf("[weathergen] sink: %v", err)
	}
	switch *sinkName {
	case "kafka":
		err = drv.Configure(kafkasink.Config{
			Brokers: strings.Split(*brokers, ","),
			Acks:    -1, // wait for all in-sync replicas
		})
	case "stdout":
		err = drv.Configure(stdoutsink.Config{PrintCounter: true})
	}
	if err != nil {
		log.Fatalf("[weathergen] sink %s: %v", *sinkName, err)
	}
	defer drv.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	gen := simulate.New(fleet, *seed)
	log.Printf("[weathergen] publishing %d stations every %s to %s and %s",
		len(fleet), *interval, *liveTopic, *historyTopic)

	ticker := time.NewTicker(*interval)
	defer ticker.Stop()
	for {
		publish(drv, gen.Tick(time.Now()), *liveTopic, *historyTopic)
		select {
		case <-ctx.Done():
			log.Println("[weathergen] stopping")
			return
		case <-ticker.C:
		}
	}
}

func publish(drv sink.Adapter, batch []simulate.Observation, topics ...string) {
	for _, obs := range batch {
		val, err := json.Marshal(obs)
		if err != nil {
			log.Printf("[weathergen] encode %s: %v", obs.StationID, err)
			continue
		}
		for _, topic := range topics {
			if err := drv.Push(sink.Message{Topic: topic, Key: []byte(obs.StationID), Value: val}); err != nil {
				log.Printf("[weathergen] publish %s to %s: %v", obs.StationID, topic, err)
			}
		}
	}
}
