package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/tdai-app/tdai/pkg/core/live"
	"github.com/tdai-app/tdai/pkg/core/types"
)

// activeCall bundles a running session with the hardware it owns.
type activeCall struct {
	sess *live.Session
	dev  *devices
	spk  *speaker
	done chan struct{}
}

// startCall opens devices, dials the Live API, and starts streaming.
// Events are consumed in the background so the REPL stays responsive.
func (a *app) startCall(ctx context.Context, withVideo bool) error {
	a.mu.Lock()
	inCall := a.call != nil
	a.mu.Unlock()
	if inCall {
		return fmt.Errorf("zaten bir görüşme sürüyor, önce /stop")
	}

	cfg := live.DefaultSessionConfig()
	cfg.APIKey = a.apiKey
	cfg.System = a.chat.Locale().SystemInstruction
	if m := os.Getenv("TDAI_LIVE_MODEL"); m != "" {
		cfg.Model = m
	}

	dev, err := newDevices()
	if err != nil {
		return err
	}
	spk, err := newSpeaker(cfg.OutputSampleRate)
	if err != nil {
		dev.Close()
		return err
	}

	dialer := func(ctx context.Context, c live.SessionConfig) (live.Transport, error) {
		return a.provider.DialLive(ctx, c)
	}
	sess := live.NewSession(cfg, dialer, dev, newWallClock(), spk)

	if err := sess.Start(ctx, withVideo); err != nil {
		spk.Close()
		dev.Close()
		return err
	}

	a.appendMessage(types.ChatMessage{Role: types.RoleModel, Text: a.chat.Locale().CallStarted})

	call := &activeCall{sess: sess, dev: dev, spk: spk, done: make(chan struct{})}
	a.mu.Lock()
	a.call = call
	a.mu.Unlock()

	go a.watchCall(call)
	fmt.Println("Görüşme başladı. Konuşabilirsin; /mute susturur, /stop bitirir.")
	return nil
}

func (a *app) watchCall(call *activeCall) {
	endCmd := strings.ToLower(a.chat.Locale().EndCallCommand)

	for ev := range call.sess.Events() {
		switch e := ev.(type) {
		case *live.TurnMessagesEvent:
			for _, msg := range e.Messages {
				label := "Td AI"
				if msg.Role == types.RoleUser {
					label = "Sen"
				}
				fmt.Printf("%s: %s\n", label, msg.Text)
				a.appendMessage(msg)

				if msg.Role == types.RoleUser && strings.Contains(strings.ToLower(msg.Text), endCmd) {
					fmt.Println("Sesli komut algılandı, görüşme kapatılıyor.")
					go call.sess.Stop()
				}
			}
		case *live.ErrorEvent:
			fmt.Fprintf(os.Stderr, "görüşme hatası: %v\n", e.Err)
		}
	}

	call.spk.Close()
	call.dev.Close()

	a.appendMessage(types.ChatMessage{Role: types.RoleModel, Text: a.chat.Locale().CallEnded})
	a.saveCurrent(context.Background())

	a.mu.Lock()
	a.call = nil
	a.mu.Unlock()
	close(call.done)
	fmt.Println("Görüşme bitti.")
}

// endCall stops the active call and waits for teardown.
func (a *app) endCall() {
	a.mu.Lock()
	call := a.call
	a.mu.Unlock()
	if call == nil {
		fmt.Println("Aktif görüşme yok.")
		return
	}
	call.sess.Stop()
	<-call.done
}

// setVolume adjusts playback on the active call. The argument is a
// percentage, 0 to 100.
func (a *app) setVolume(arg string) {
	a.mu.Lock()
	call := a.call
	a.mu.Unlock()
	if call == nil {
		fmt.Println("Aktif görüşme yok.")
		return
	}
	pct, err := strconv.Atoi(strings.TrimSpace(arg))
	if err != nil || pct < 0 || pct > 100 {
		fmt.Println("Kullanım: /volume <0-100>")
		return
	}
	call.spk.SetVolume(float64(pct) / 100)
	fmt.Printf("Ses seviyesi: %%%d\n", pct)
}

// toggleMute flips outbound audio on the active call.
func (a *app) toggleMute() {
	a.mu.Lock()
	call := a.call
	a.mu.Unlock()
	if call == nil {
		fmt.Println("Aktif görüşme yok.")
		return
	}
	muted := !call.sess.Muted()
	call.sess.SetMuted(muted)
	if muted {
		fmt.Println("Mikrofon kapatıldı.")
	} else {
		fmt.Println("Mikrofon açıldı.")
	}
}
