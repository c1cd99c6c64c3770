package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/localnerve/jam-build-learnhub/internal/appstate"
	"github.com/localnerve/jam-build-learnhub/internal/config"
	"github.com/localnerve/jam-build-learnhub/internal/content"
	"github.com/localnerve/jam-build-learnhub/internal/offline"
	"github.com/localnerve/jam-build-learnhub/internal/sdk"
)

const usage = `
Browse learnhub content, online or from the local mirror.

Usage:

learnhub [-f ENV_FILE_PATH] [-offline] [-probe dial|http] COMMAND [ARGS]

Commands:
  list RESOURCE     subjects | topics | notes | papers | tips | notifications
  select            -grade G -level L -subject ID -topic ID | -clear
  signup            -email E -password P -name N [-phone P]
  login             -email E -password P
  logout
  read ID...        mark notifications read
  view FILE_TYPE ID print a viewer URL for a stored file
  upload PATH       upload a file (admin)

example
  learnhub -f .env select -grade form-2
  learnhub -f .env list subjects
`

type app struct {
	cfg     *config.ClientConfig
	client  *sdk.Client
	mirror  offline.Store
	store   *appstate.Store
	catalog *content.Catalog
}

func main() {
	var showHelp, forceOffline bool
	var envFilename, probeKind string
	flag.BoolVar(&showHelp, "h", false, "show help")
	flag.StringVar(&envFilename, "f", "", "path to the .env file")
	flag.BoolVar(&forceOffline, "offline", false, "read from the local mirror only")
	flag.StringVar(&probeKind, "probe", "http", "connectivity probe: dial or http")
	flag.Parse()

	if showHelp || flag.NArg() == 0 {
		fmt.Print(usage, "\n")
		return
	}

	if envFilename != "" {
		if err := godotenv.Load(envFilename); err != nil {
			log.Fatalf("Failed to load environment variables: %v", err)
		}
	}

	cfg, err := config.LoadClient()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	a, err := newApp(cfg, forceOffline, probeKind)
	if err != nil {
		log.Fatalf("Failed to start: %v", err)
	}

	err = a.run(context.Background(), flag.Arg(0), flag.Args()[1:])
	if closeErr := a.mirror.Close(); closeErr != nil {
		log.Printf("Failed to close the local mirror: %v", closeErr)
	}
	if err != nil {
		log.Fatalf("%s: %v", flag.Arg(0), err)
	}
}

func newApp(cfg *config.ClientConfig, forceOffline bool, probeKind string) (*app, error) {
	mirror, err := offline.OpenStore(cfg)
	if err != nil {
		return nil, err
	}

	client := sdk.New(cfg)
	ctx := context.Background()
	if token, ok := offline.LoadSession(ctx, mirror); ok {
		client.SetSession(token)
	}

	var probe offline.Probe
	switch {
	case forceOffline:
		probe = offline.StaticProbe(false)
	case probeKind == "dial":
		probe = offline.DialProbe{URL: cfg.Endpoint, Timeout: cfg.Timeout}
	default:
		probe = offline.HTTPProbe{URL: client.HealthURL()}
	}

	loader := &offline.Loader{Probe: probe, Mirror: mirror}
	return &app{
		cfg:     cfg,
		client:  client,
		mirror:  mirror,
		store:   appstate.NewStore(appstate.Restore(ctx, mirror)),
		catalog: content.NewCatalog(client, cfg.DatabaseID, loader, cfg.Parity),
	}, nil
}

func (a *app) run(ctx context.Context, command string, args []string) error {
	// Persist every state change for the next invocation
	unsubscribe := a.store.Subscribe(func(s appstate.State) {
		if err := appstate.Save(ctx, a.mirror, s); err != nil {
			log.Printf("Failed to save state: %v", err)
		}
	})
	defer unsubscribe()

	switch command {
	case "list":
		if len(args) != 1 {
			return errors.New("expected one resource name")
		}
		return a.list(ctx, args[0])
	case "select":
		return a.selectCmd(args)
	case "signup":
		return a.signup(ctx, args)
	case "login":
		return a.login(ctx, args)
	case "logout":
		a.client.SetSession("")
		a.store.Dispatch(appstate.SignOut{})
		return offline.SaveSession(ctx, a.mirror, "")
	case "read":
		state := offline.ReadState{Mirror: a.mirror}
		return state.MarkRead(ctx, args...)
	case "view":
		if len(args) != 2 {
			return errors.New("expected FILE_TYPE and file id")
		}
		return a.view(ctx, args[0], args[1])
	case "upload":
		if len(args) != 1 {
			return errors.New("expected a file path")
		}
		return a.upload(ctx, args[0])
	}
	return fmt.Errorf("unknown command %q", command)
}

func (a *app) list(ctx context.Context, resource string) error {
	sel := a.store.State().Selection

	var (
		items  interface{}
		source offline.Source
	)
	switch resource {
	case content.Subjects:
		items, source = a.catalog.Subjects(ctx, sel.Grade)
	case content.Topics:
		items, source = a.catalog.Topics(ctx, sel.SubjectID)
	case content.Notes:
		items, source = a.catalog.Notes(ctx, sel.SubjectID, sel.TopicID)
	case content.Papers:
		items, source = a.catalog.Papers(ctx, sel.SubjectID, sel.Grade)
	case content.Tips:
		items, source = a.catalog.Tips(ctx)
	case content.Notifications:
		notifications, src := a.catalog.Notifications(ctx)
		items, source = a.markNotifications(ctx, notifications), src
	default:
		return fmt.Errorf("unknown resource %q", resource)
	}

	log.Printf("%s loaded from %s", resource, source)
	return printJSON(items)
}

type notificationView struct {
	content.Notification
	Read bool `json:"read"`
}

func (a *app) markNotifications(ctx context.Context, notifications []content.Notification) []notificationView {
	state := offline.ReadState{Mirror: a.mirror}
	read := state.IDs(ctx)

	views := make([]notificationView, len(notifications))
	for i, n := range notifications {
		views[i] = notificationView{Notification: n}
		for _, id := range read {
			if id == n.ID {
				views[i].Read = true
				break
			}
		}
	}
	return views
}

func (a *app) selectCmd(args []string) error {
	fs := flag.NewFlagSet("select", flag.ContinueOnError)
	grade := fs.String("grade", "", "grade")
	level := fs.String("level", "", "level")
	subject := fs.String("subject", "", "subject id")
	topic := fs.String("topic", "", "topic id")
	reset := fs.Bool("clear", false, "clear the selection")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var actions []appstate.Action
	if *reset {
		actions = append(actions, appstate.ClearSelection{})
	}
	if *grade != "" {
		actions = append(actions, appstate.SelectGrade{Grade: *grade})
	}
	if *level != "" {
		actions = append(actions, appstate.SelectLevel{Level: *level})
	}
	if *subject != "" {
		actions = append(actions, appstate.SelectSubject{SubjectID: *subject})
	}
	if *topic != "" {
		actions = append(actions, appstate.SelectTopic{TopicID: *topic})
	}

	return printJSON(a.store.Dispatch(actions...).Selection)
}

func (a *app) signup(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("signup", flag.ContinueOnError)
	in := sdk.SignUp{}
	fs.StringVar(&in.Email, "email", "", "email")
	fs.StringVar(&in.Password, "password", "", "password")
	fs.StringVar(&in.Name, "name", "", "display name")
	fs.StringVar(&in.Phone, "phone", "", "phone number")
	if err := fs.Parse(args); err != nil {
		return err
	}

	in.Email = strings.TrimSpace(strings.ToLower(in.Email))
	if err := content.ValidateSignUp(in.Email, in.Password, in.Name); err != nil {
		return err
	}

	profile, err := a.client.Account().Create(ctx, in)
	if errors.Is(err, sdk.ErrEmailInUse) {
		return fmt.Errorf("%s is already registered, use login", in.Email)
	}
	if err != nil {
		return err
	}
	return printJSON(profile)
}

func (a *app) login(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	email := fs.String("email", "", "email")
	password := fs.String("password", "", "password")
	if err := fs.Parse(args); err != nil {
		return err
	}

	session, err := a.client.Account().CreateSession(ctx, strings.TrimSpace(strings.ToLower(*email)), *password)
	if err != nil {
		return err
	}
	if err := offline.SaveSession(ctx, a.mirror, session.Token); err != nil {
		return fmt.Errorf("signed in but failed to store the session: %w", err)
	}

	var profile content.Profile
	if err := session.Profile.Decode(&profile); err != nil {
		return err
	}
	a.store.Dispatch(appstate.SignIn{UserID: profile.ID, Role: profile.Role})
	return printJSON(profile)
}

func (a *app) view(ctx context.Context, fileType, fileID string) error {
	viewURL, err := a.client.Storage(a.cfg.FilesBucket).FileViewURL(ctx, fileID)
	if err != nil {
		return err
	}
	fmt.Println(sdk.ViewerURL(fileType, viewURL))
	return nil
}

func (a *app) upload(ctx context.Context, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	file, err := a.client.Storage(a.cfg.FilesBucket).CreateFile(ctx, filepath.Base(path), f)
	if err != nil {
		return err
	}
	return printJSON(file)
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
