package main

import (
	"context"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"rady-client/internal/gathering"
	"rady-client/internal/location"
	"rady-client/internal/models"
	"rady-client/internal/notify"
	"rady-client/internal/rest"
)

func main() {
	log.Println("═══════════════════════════════════════════════════════════════════")
	log.Println("🚀 RADY GATHERING SIMULATOR STARTING")
	log.Println("═══════════════════════════════════════════════════════════════════")

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  Warning: .env file not found, using environment variables from system")
	} else {
		log.Println("✅ .env file loaded successfully")
	}

	apiURL := os.Getenv("RADY_API_URL")
	token := os.Getenv("RADY_TOKEN")
	pushURL := os.Getenv("RADY_PUSH_URL")

	selfID := 7
	if raw := os.Getenv("RADY_USER_ID"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			log.Fatalf("❌ RADY_USER_ID must be an integer, got %q", raw)
		}
		selfID = parsed
	}

	// Destination and a walk approaching it from roughly half a kilometer out
	destination := models.Place{Latitude: 48.8582, Longitude: 2.2945, Name: "Champ de Mars"}
	walk := approachWalk(destination, 10)

	stream := location.NewStream(location.NewScriptedSource(walk, 300*time.Millisecond))

	var transport gathering.Transport
	if apiURL != "" {
		log.Printf("✅ Using API at %s", apiURL)
		transport = rest.NewClient(apiURL, token)
	} else {
		log.Println("⚠️  RADY_API_URL not set, running offline against a local stub server")
		transport = newStubTransport(selfID)
	}

	coord := gathering.New(transport, stream, selfID)
	dispatcher := notify.NewDispatcher()
	coord.Bind(dispatcher, logNavigator{}, autoPrompter{})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if pushURL != "" {
		log.Printf("✅ Connecting push channel to %s", pushURL)
		channel := notify.NewChannel(pushURL, token, dispatcher)
		go func() {
			if err := channel.Run(ctx); err != nil {
				log.Printf("❌ Push channel stopped: %v", err)
			}
		}()
	}

	// Watch the live distance shrink as the scripted walk progresses
	stream.Subscribe(func(p models.Position) {
		if meters, ok := coord.Distance(); ok {
			log.Printf("📍 Position (%.6f, %.6f), %d m to destination", p.Latitude, p.Longitude, meters)
		}
	})

	// Assemble and post a gathering
	draft := &models.Gathering{
		Organiser: models.User{ID: selfID, Username: "simulator"},
		Type:      models.MeetingTypePlace,
		Place:     &destination,
		Participants: []models.Participant{
			{User: models.User{ID: selfID, Username: "simulator"}},
			{User: models.User{ID: selfID + 1, Username: "invitee"}},
		},
	}
	if err := coord.Set(draft, models.StatusCreate); err != nil {
		log.Fatalf("❌ Set failed: %v", err)
	}
	if err := coord.Create(ctx); err != nil {
		log.Fatalf("❌ Create failed: %v", err)
	}
	if err := coord.Transition(models.StatusPending); err != nil {
		log.Fatalf("❌ Transition failed: %v", err)
	}
	log.Printf("✅ Gathering %d pending", coord.Record().ID)

	// The server pushes acceptance and progress; offline, inject them here
	if pushURL == "" {
		meetingID := coord.Record().ID
		dispatcher.Notify(push("user-accepted-meeting", meetingID, selfID+1))
		dispatcher.Notify(push("meeting-in-progress", meetingID, 0))
	}

	// Let the walk play out
	time.Sleep(4 * time.Second)

	if coord.Status() == models.StatusRunning {
		if err := coord.Arrived(ctx); err != nil {
			log.Printf("⚠️  Arrived failed: %v", err)
		}
		if err := coord.Stop(ctx, models.RemoteEnded); err != nil {
			log.Printf("⚠️  Stop failed: %v", err)
		}
	}
	coord.Reset(ctx, false, models.RemoteEnded)

	log.Println("═══════════════════════════════════════════════════════════════════")
	log.Println("✅ SIMULATION COMPLETE")
	log.Println("═══════════════════════════════════════════════════════════════════")
}

// approachWalk builds a straight-line series of positions ending on the
// destination
func approachWalk(dest models.Place, steps int) []models.Position {
	const startOffset = 0.005 // roughly half a kilometer of latitude
	walk := make([]models.Position, steps)
	for i := 0; i < steps; i++ {
		fraction := float64(i+1) / float64(steps)
		walk[i] = models.Position{
			Latitude:  dest.Latitude - startOffset*(1-fraction),
			Longitude: dest.Longitude,
			Accuracy:  5,
			Timestamp: time.Now().UnixMilli(),
		}
	}
	return walk
}

func push(kind string, meeting, participant int) models.Notification {
	return models.Notification{
		Title: "simulated push",
		AdditionalData: models.NotificationData{
			Type:        kind,
			Meeting:     meeting,
			Participant: participant,
		},
	}
}

// logNavigator is the simulator's stand-in for real screen navigation
type logNavigator struct{}

func (logNavigator) Go(screen gathering.Screen) {
	log.Printf("🧭 Navigate to %s", screen)
}

// autoPrompter views every invitation and acknowledges every terminal prompt
type autoPrompter struct{}

func (autoPrompter) ConfirmNewGathering(n models.Notification) bool {
	log.Printf("🔔 %s: %s (auto-viewing)", n.Title, n.Message)
	return true
}

func (autoPrompter) Acknowledge(n models.Notification) {
	log.Printf("🔔 %s: %s", n.Title, n.Message)
}
