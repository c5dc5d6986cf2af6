// Command audioclient streams a WAV file over the transcription socket at
// real-time pace, printing every event the server broadcasts back. Useful
// for exercising the pipeline without a browser client.
package main

import (
	"encoding/json"
	"flag"
	"io"
	"log"
	"time"

	"github.com/gorilla/websocket"

	dto "github.com/sentrymeet/sentrymeet/internal/adapter/dto/transcription"
	"github.com/sentrymeet/sentrymeet/pkg/audio"
	"github.com/sentrymeet/sentrymeet/pkg/pcm"
)

func main() {
	audioFile := flag.String("audio", "testdata/sample-16khz.wav", "Path to WAV file (16kHz 16-bit mono)")
	serverURL := flag.String("server", "ws://localhost:8080/ws", "Socket endpoint")
	roomID := flag.String("room", "demo-room", "Room ID")
	userName := flag.String("name", "AudioClient", "Participant name")
	language := flag.String("language", "auto", "Requested language")
	flag.Parse()

	src := &audio.WavSource{Path: *audioFile, FrameSamples: audio.DefaultFrameSamples}
	if err := src.Open(); err != nil {
		log.Fatalf("Invalid WAV file: %v", err)
	}
	defer src.Close()

	conn, _, err := websocket.DefaultDialer.Dial(*serverURL, nil)
	if err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer conn.Close()
	log.Printf("Connected to %s", *serverURL)

	// Print everything the server sends back.
	go func() {
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			log.Printf("<- %s", data)
		}
	}()

	send := func(event string, payload interface{}) {
		data, err := json.Marshal(payload)
		if err != nil {
			log.Fatalf("Failed to marshal %s: %v", event, err)
		}
		if err := conn.WriteJSON(dto.Envelope{Event: event, Data: data}); err != nil {
			log.Fatalf("Failed to send %s: %v", event, err)
		}
	}

	send(dto.EventJoinRoom, dto.JoinRoomRequest{RoomID: *roomID})
	send(dto.EventStart, dto.StartRequest{
		RoomID:   *roomID,
		Language: *language,
		User:     dto.UserRef{Name: *userName},
	})

	// One frame is DefaultFrameSamples at 16kHz; pace sends to match.
	frameInterval := time.Duration(audio.DefaultFrameSamples) * time.Second / audio.SampleRate

	var chunkNum int
	startTime := time.Now()
	for {
		samples, err := src.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Fatalf("Failed to read audio: %v", err)
		}

		chunkNum++
		send(dto.EventAudio, dto.AudioRequest{Chunk: pcm.EncodeBase64(samples)})

		if chunkNum%100 == 0 {
			log.Printf("Sent chunk %d (%.1fs of audio)", chunkNum,
				float64(chunkNum)*frameInterval.Seconds())
		}
		time.Sleep(frameInterval)
	}

	log.Printf("Finished streaming %d chunks in %v", chunkNum, time.Since(startTime))

	send(dto.EventStop, nil)

	// Give the server a moment to flush trailing transcripts.
	time.Sleep(2 * time.Second)
	_ = conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}
