// Command tdai is the Td AI terminal client: chat with search grounding
// and image generation, plus voice and video calls over the Live API.
package main

import (
	"bufio"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/tdai-app/tdai/pkg/auth"
	"github.com/tdai-app/tdai/pkg/chat"
	"github.com/tdai-app/tdai/pkg/core"
	"github.com/tdai-app/tdai/pkg/core/providers/gemini"
	"github.com/tdai-app/tdai/pkg/core/types"
	"github.com/tdai-app/tdai/pkg/store"
)

type app struct {
	apiKey   string
	provider *gemini.Provider
	chat     *chat.Service
	store    store.Store

	mu       sync.Mutex
	user     types.User
	current  types.ChatSession
	lastList []types.ChatSession
	call     *activeCall
}

func main() {
	_ = godotenv.Load()

	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		log.Fatal("GEMINI_API_KEY is required")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	st := openStore(ctx)
	defer st.Close()

	models := chat.DefaultModels()
	if m := os.Getenv("TDAI_MODEL"); m != "" {
		models.Chat = m
	}
	provider := gemini.New(apiKey)

	a := &app{
		apiKey:   apiKey,
		provider: provider,
		chat:     chat.NewService(provider, models, chat.Turkish()),
		store:    st,
	}

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 1024*1024), 1024*1024)

	a.login(ctx, scanner)
	a.newChat()

	fmt.Println()
	fmt.Println(a.chat.Locale().Welcome)
	printHelp()

	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "q" || line == "quit" {
			break
		}
		a.handle(ctx, line)
		if ctx.Err() != nil {
			break
		}
	}

	a.endCallIfActive()
	a.saveCurrent(context.Background())
	fmt.Println("Görüşürüz!")
}

func openStore(ctx context.Context) store.Store {
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		log.Printf("DATABASE_URL not set, using in-memory store")
		return store.NewMemory()
	}
	st, err := store.Open(ctx, url)
	if err != nil {
		log.Printf("database unavailable (%v), using in-memory store", err)
		return store.NewMemory()
	}
	return st
}

// login runs the simulated email flow: the verification code is shown
// on screen instead of being mailed.
func (a *app) login(ctx context.Context, scanner *bufio.Scanner) {
	issuer := auth.NewCodeIssuer()

	for {
		fmt.Print("E-posta: ")
		if !scanner.Scan() {
			os.Exit(0)
		}
		email := scanner.Text()

		code, err := issuer.Request(email)
		if err != nil {
			fmt.Println("Geçerli bir e-posta adresi gir.")
			continue
		}
		fmt.Printf("Doğrulama kodun: %s\n", code)

		fmt.Print("Kod: ")
		if !scanner.Scan() {
			os.Exit(0)
		}
		if !issuer.Verify(email, scanner.Text()) {
			fmt.Println("Kod yanlış, baştan dene.")
			continue
		}

		user, err := a.store.EnsureUser(ctx, email)
		if err != nil {
			log.Printf("could not load profile (%v), continuing with a fresh one", err)
			normalized := store.NormalizeEmail(email)
			name := normalized
			if at := strings.Index(normalized, "@"); at > 0 {
				name = normalized[:at]
			}
			user = types.User{
				Email:   normalized,
				Profile: types.UserProfile{Name: name},
				Activity: types.UserActivity{
					CreatedAt: time.Now(),
					LastLogin: time.Now(),
				},
			}
		}
		a.user = user
		fmt.Printf("Hoş geldin, %s!\n", user.Profile.Name)
		return
	}
}

func (a *app) handle(ctx context.Context, line string) {
	cmd, rest, _ := strings.Cut(line, " ")
	switch cmd {
	case "/help":
		printHelp()
	case "/new":
		a.saveCurrent(ctx)
		a.newChat()
		fmt.Println("Yeni sohbet açıldı.")
	case "/chats":
		a.listChats(ctx)
	case "/open":
		a.openChat(ctx, rest)
	case "/delete":
		a.deleteChat(ctx, rest)
	case "/call":
		if err := a.startCall(ctx, false); err != nil {
			printErr(err)
		}
	case "/video":
		if err := a.startCall(ctx, true); err != nil {
			printErr(err)
		}
	case "/mute":
		a.toggleMute()
	case "/volume":
		a.setVolume(rest)
	case "/stop":
		a.endCall()
	case "/profile":
		a.updateProfile(ctx, rest)
	case "/file":
		path, prompt, _ := strings.Cut(strings.TrimSpace(rest), " ")
		a.sendWithFile(ctx, path, prompt)
	default:
		loc := a.chat.Locale()
		if strings.Contains(strings.ToLower(line), loc.StartCallCommand) {
			if err := a.startCall(ctx, false); err != nil {
				printErr(err)
			}
			return
		}
		a.sendPrompt(ctx, line, nil)
	}
}

func (a *app) newChat() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.current = types.ChatSession{
		ID:        uuid.NewString(),
		Messages:  []types.ChatMessage{a.chat.Welcome()},
		CreatedAt: time.Now(),
	}
}

func (a *app) appendMessage(msg types.ChatMessage) {
	a.mu.Lock()
	a.current.Messages = append(a.current.Messages, msg)
	a.mu.Unlock()
}

// saveCurrent persists the open session. Storage failures are logged
// and swallowed; the conversation keeps going either way.
func (a *app) saveCurrent(ctx context.Context) {
	a.mu.Lock()
	chatCopy := a.current
	email := a.user.Email
	a.mu.Unlock()

	if len(chatCopy.Messages) <= 1 {
		return
	}
	if err := a.store.SaveChat(ctx, email, chatCopy); err != nil {
		log.Printf("could not save chat: %v", err)
	}
}

func (a *app) sendPrompt(ctx context.Context, prompt string, file *types.FileData) {
	a.mu.Lock()
	history := append([]types.ChatMessage{}, a.current.Messages...)
	needsTitle := a.current.Title == ""
	a.mu.Unlock()

	var streamed bool
	reply, err := a.chat.ReplyStream(ctx, history, prompt, file, func(delta string) {
		streamed = true
		fmt.Print(delta)
	})
	if err != nil {
		if streamed {
			fmt.Println()
		}
		printErr(err)
		return
	}

	a.appendMessage(types.ChatMessage{Role: types.RoleUser, Text: prompt, File: file})
	a.appendMessage(reply)

	if streamed {
		fmt.Println()
	} else if reply.Text != "" {
		fmt.Println(reply.Text)
	}
	for _, src := range reply.Sources {
		fmt.Printf("  kaynak: %s (%s)\n", src.Title, src.URI)
	}
	if reply.Image != "" {
		if path, err := saveDataURL(reply.Image); err == nil {
			fmt.Printf("Görsel kaydedildi: %s\n", path)
		}
	}

	if needsTitle {
		title := a.chat.Title(ctx, prompt)
		a.mu.Lock()
		a.current.Title = title
		a.mu.Unlock()
	}
	a.saveCurrent(ctx)
}

func (a *app) sendWithFile(ctx context.Context, path, prompt string) {
	if path == "" || prompt == "" {
		fmt.Println("Kullanım: /file <dosya> <mesaj>")
		return
	}
	data, err := os.ReadFile(path)
	if err != nil {
		printErr(core.NewFileProcessError(fmt.Sprintf("dosya okunamadı: %v", err)))
		return
	}
	file := &types.FileData{
		Base64:   base64.StdEncoding.EncodeToString(data),
		MIMEType: inferMediaType(path),
	}
	a.sendPrompt(ctx, prompt, file)
}

func (a *app) listChats(ctx context.Context) {
	chats, err := a.store.ListChats(ctx, a.user.Email)
	if err != nil {
		log.Printf("could not list chats: %v", err)
		return
	}
	if len(chats) == 0 {
		fmt.Println("Kayıtlı sohbet yok.")
		return
	}
	a.mu.Lock()
	a.lastList = chats
	a.mu.Unlock()
	for i, c := range chats {
		title := c.Title
		if title == "" {
			title = "(başlıksız)"
		}
		fmt.Printf("%d. %s (%s)\n", i+1, title, c.CreatedAt.Format("02.01.2006 15:04"))
	}
}

func (a *app) pickChat(arg string) (types.ChatSession, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(arg))
	a.mu.Lock()
	defer a.mu.Unlock()
	if err != nil || n < 1 || n > len(a.lastList) {
		return types.ChatSession{}, false
	}
	return a.lastList[n-1], true
}

func (a *app) openChat(ctx context.Context, arg string) {
	chosen, ok := a.pickChat(arg)
	if !ok {
		fmt.Println("Önce /chats ile listele, sonra numara ver.")
		return
	}
	a.saveCurrent(ctx)
	a.mu.Lock()
	a.current = chosen
	a.mu.Unlock()
	fmt.Printf("Sohbet açıldı: %s\n", chosen.Title)
	for _, msg := range chosen.Messages {
		label := "Td AI"
		if msg.Role == types.RoleUser {
			label = "Sen"
		}
		fmt.Printf("%s: %s\n", label, msg.Text)
	}
}

func (a *app) deleteChat(ctx context.Context, arg string) {
	chosen, ok := a.pickChat(arg)
	if !ok {
		fmt.Println("Önce /chats ile listele, sonra numara ver.")
		return
	}
	if err := a.store.DeleteChat(ctx, a.user.Email, chosen.ID); err != nil {
		log.Printf("could not delete chat: %v", err)
		return
	}
	fmt.Println("Sohbet silindi.")
}

func (a *app) updateProfile(ctx context.Context, name string) {
	name = strings.TrimSpace(name)
	if name == "" {
		fmt.Println("Kullanım: /profile <isim>")
		return
	}
	a.mu.Lock()
	a.user.Profile.Name = name
	profile := a.user.Profile
	email := a.user.Email
	a.mu.Unlock()

	if err := a.store.UpdateProfile(ctx, email, profile); err != nil {
		log.Printf("could not update profile: %v", err)
	}
	fmt.Printf("İsim güncellendi: %s\n", name)
}

func (a *app) endCallIfActive() {
	a.mu.Lock()
	call := a.call
	a.mu.Unlock()
	if call != nil {
		call.sess.Stop()
		<-call.done
	}
}

func printErr(err error) {
	var e *core.Error
	if errors.As(err, &e) {
		if e.Type == core.ErrMediaAccess {
			fmt.Println("Mikrofona veya kameraya erişilemedi.")
		}
		fmt.Printf("hata (%s): %s\n", e.Type, e.Message)
		return
	}
	fmt.Printf("hata: %v\n", err)
}

// saveDataURL writes an inline image to the working directory.
func saveDataURL(dataURL string) (string, error) {
	_, encoded, ok := strings.Cut(dataURL, ",")
	if !ok {
		return "", fmt.Errorf("malformed data URL")
	}
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", err
	}
	path := fmt.Sprintf("tdai_gorsel_%d.png", time.Now().Unix())
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

func inferMediaType(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	case ".pdf":
		return "application/pdf"
	case ".txt", ".md":
		return "text/plain"
	default:
		return "application/octet-stream"
	}
}

func printHelp() {
	fmt.Println(`Komutlar:
  /new            yeni sohbet
  /chats          kayıtlı sohbetleri listele
  /open <n>       sohbeti aç
  /delete <n>     sohbeti sil
  /file <p> <m>   dosya ekleyerek sor
  /call           sesli görüşme başlat
  /video          görüntülü görüşme başlat
  /mute           mikrofonu aç/kapat
  /volume <0-100> ses seviyesi
  /stop           görüşmeyi bitir
  /profile <ad>   görünen adı değiştir
  q               çıkış`)
}
