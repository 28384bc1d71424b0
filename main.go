package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"golang.org/x/term"

	"CinderMUD/commands"
	"CinderMUD/internal/config"
	"CinderMUD/internal/game"
	"CinderMUD/internal/store"
)

const usage = `Usage: cindermud <command> [flags]

Commands:
  start       run the server
  stop        stop a running server
  restart     stop then start the server
  setup       create the database schema
  create_god  create an administrator account
  clean       wipe all game data from the database
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	command := os.Args[1]

	flags := flag.NewFlagSet(command, flag.ExitOnError)
	configPath := flags.String("config", "cindermud.yaml", "Path to the server configuration file")
	_ = flags.Parse(os.Args[2:])

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal(err)
	}

	switch command {
	case "start":
		err = runStart(cfg)
	case "stop":
		err = runStop(cfg)
	case "restart":
		if err = runStop(cfg); err != nil {
			log.Printf("stop: %v", err)
		}
		err = runStart(cfg)
	case "setup":
		err = runSetup(cfg)
	case "create_god":
		err = runCreateGod(cfg, flags.Args())
	case "clean":
		err = runClean(cfg)
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	if err != nil {
		log.Fatal(err)
	}
}

func runStart(cfg *config.Config) error {
	st, err := store.OpenSQLite(cfg.DatabasePath)
	if err != nil {
		return err
	}
	defer st.Close()
	if err := st.Setup(); err != nil {
		return err
	}

	world := game.NewWorld(cfg, st)
	world.Dispatch = commands.Dispatch
	if err := world.LoadAreas(); err != nil {
		return err
	}
	if err := world.LoadAreaDir(cfg.AreasPath); err != nil {
		log.Printf("load area files: %v", err)
	}
	if len(world.Areas) == 0 {
		seedFirstArea(world)
	}

	if err := os.MkdirAll(cfg.AreasPath, 0o755); err == nil {
		if watcher, err := world.WatchAreas(cfg.AreasPath); err != nil {
			log.Printf("area watcher disabled: %v", err)
		} else {
			defer watcher.Close()
		}
	}

	if err := writePidFile(cfg.PidFile); err != nil {
		return err
	}
	defer os.Remove(cfg.PidFile)

	srv := game.NewServer(world)
	if err := srv.Start(); err != nil {
		return err
	}
	log.Printf("cindermud running (pid %d)", os.Getpid())

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig
	log.Printf("shutting down")
	srv.Stop()
	return nil
}

func runStop(cfg *config.Config) error {
	data, err := os.ReadFile(cfg.PidFile)
	if err != nil {
		return fmt.Errorf("no pid file at %s; is the server running?", cfg.PidFile)
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return fmt.Errorf("bad pid file %s: %w", cfg.PidFile, err)
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		return err
	}
	if err := proc.Signal(syscall.SIGTERM); err != nil {
		return fmt.Errorf("signal pid %d: %w", pid, err)
	}
	for i := 0; i < 50; i++ {
		if proc.Signal(syscall.Signal(0)) != nil {
			fmt.Printf("stopped pid %d\n", pid)
			return nil
		}
		time.Sleep(100 * time.Millisecond)
	}
	return fmt.Errorf("pid %d did not exit", pid)
}

func runSetup(cfg *config.Config) error {
	st, err := store.OpenSQLite(cfg.DatabasePath)
	if err != nil {
		return err
	}
	defer st.Close()
	if err := st.Setup(); err != nil {
		return err
	}
	fmt.Printf("database ready at %s\n", cfg.DatabasePath)
	return nil
}

func runCreateGod(cfg *config.Config, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: cindermud create_god <name>")
	}
	st, err := store.OpenSQLite(cfg.DatabasePath)
	if err != nil {
		return err
	}
	defer st.Close()
	if err := st.Setup(); err != nil {
		return err
	}
	password, err := readPassword()
	if err != nil {
		return err
	}
	world := game.NewWorld(cfg, st)
	if err := world.CreateGod(args[0], password); err != nil {
		return err
	}
	fmt.Printf("god account %s created\n", args[0])
	return nil
}

func runClean(cfg *config.Config) error {
	st, err := store.OpenSQLite(cfg.DatabasePath)
	if err != nil {
		return err
	}
	defer st.Close()
	if err := st.Clean(); err != nil {
		return err
	}
	fmt.Printf("database at %s wiped\n", cfg.DatabasePath)
	return nil
}

func readPassword() (string, error) {
	fmt.Print("Password: ")
	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return "", err
	}
	password := strings.TrimSpace(string(raw))
	if len(password) < 4 {
		return "", fmt.Errorf("passwords must be at least 4 characters")
	}
	if len(password) > 72 {
		// bcrypt truncates longer inputs
		return "", fmt.Errorf("passwords must be at most %d characters", 72)
	}
	return password, nil
}

func writePidFile(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	if data, err := os.ReadFile(path); err == nil {
		if pid, err := strconv.Atoi(strings.TrimSpace(string(data))); err == nil {
			if proc, err := os.FindProcess(pid); err == nil && proc.Signal(syscall.Signal(0)) == nil {
				return fmt.Errorf("server already running with pid %d", pid)
			}
		}
	}
	return os.WriteFile(path, []byte(strconv.Itoa(os.Getpid())), 0o644)
}


func seedFirstArea(world *game.World) {
	area := game.NewArea("start", "The First Spark")
	room := area.NewRoom("A Quiet Clearing")
	room.Description = "Soft grass and the smell of cinders. The world begins here."
	world.Areas[area.Name] = area
	world.StartRef = room.Ref()
	log.Printf("no areas found; seeded %s", room.Ref())
}
