package ui

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/javiermolinar/shcadule/internal/config"
)

func TestConfigInit(t *testing.T) {
	env := newTestEnv(t)
	path := filepath.Join(t.TempDir(), "shcadule", "config.toml")

	out := env.run("config", "init", "--config", path)
	assertContains(t, out, "Created "+path)

	cfg, err := config.LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.User.ID != "u1" {
		t.Errorf("user id = %q, want u1", cfg.User.ID)
	}

	if _, err := env.exec("config", "init", "--config", path); err == nil {
		t.Error("init over an existing file succeeded without --force")
	}
	env.run("config", "init", "--config", path, "--force")
}

func TestRunConfigInteractive(t *testing.T) {
	t.Setenv("SHCADULE_USER_ID", "")
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := config.Default().SaveTo(path); err != nil {
		t.Fatal(err)
	}

	// user, calendar, weeks ahead (one bad answer), db path, approval days, log level, time format, theme (one bad answer)
	answers := strings.Join([]string{"amara", "ethiopian", "many", "12", "", "", "", "12", "dracula", "Latte"}, "\n") + "\n"
	var out bytes.Buffer
	if err := runConfigInteractive(&out, strings.NewReader(answers), path); err != nil {
		t.Fatalf("runConfigInteractive: %v\n%s", err, out.String())
	}

	cfg, err := config.LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.User.ID != "amara" || cfg.Board.Calendar != "ethiopian" || cfg.Board.WeeksAhead != 12 || cfg.UI.TimeFormat != "12" || cfg.UI.Theme != "latte" {
		t.Errorf("saved config = %+v", cfg)
	}
	assertContains(t, out.String(), `"many" is not a number`, `Invalid theme "dracula"`, "Configuration saved!")
}

func TestRunConfigInteractive_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	answers := strings.Join([]string{"", "julian", "", "", "", "", ""}, "\n") + "\n"

	var out bytes.Buffer
	if err := runConfigInteractive(&out, strings.NewReader(answers), path); err == nil {
		t.Fatal("invalid calendar was saved")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("config file written despite validation error: %v", err)
	}
}
