package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/gofrs/flock"

	"rpgdecrypt/internal/cipher"
	"rpgdecrypt/internal/config"
	"rpgdecrypt/internal/keycodec"
	"rpgdecrypt/internal/logging"
	"rpgdecrypt/internal/manifest"
	"rpgdecrypt/internal/planner"
	"rpgdecrypt/internal/testsupport"
)

func newOptions(t *testing.T, root string) Options {
	t.Helper()
	return Options{
		GameRoot: root,
		Workers:  2,
		LockDir:  filepath.Join(t.TempDir(), "locks"),
	}
}

func listTree(t *testing.T, root string) []string {
	t.Helper()
	var out []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, _ := filepath.Rel(root, path)
		out = append(out, rel)
		return nil
	})
	if err != nil {
		t.Fatalf("walk %s: %v", root, err)
	}
	sort.Strings(out)
	return out
}

func TestRunInPlaceKeepHeaderDecryptsFirstKeyBytes(t *testing.T) {
	game := testsupport.NewGame(t)
	game.WriteManifest(testsupport.LayoutMZ, map[string]any{
		"encryptionKey":      "a1b2c3d4",
		"hasEncryptedAudio":  true,
		"hasEncryptedImages": true,
	})
	plain := testsupport.Plaintext(64)
	encrypted := game.WriteAsset("img/pic.rpgmvp", plain)

	opts := newOptions(t, game.Root)
	opts.KeepHeader = true
	report, err := Run(context.Background(), opts)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	got, err := os.ReadFile(game.Path("img/pic.png"))
	if err != nil {
		t.Fatalf("read decrypted: %v", err)
	}
	if !bytes.Equal(got[:cipher.HeaderSize], cipher.Header[:]) {
		t.Fatalf("header changed: %x", got[:cipher.HeaderSize])
	}
	if !bytes.Equal(got[cipher.HeaderSize:], plain) {
		t.Fatalf("body mismatch:\n got %x\nwant %x", got[cipher.HeaderSize:], plain)
	}
	testsupport.AssertMissing(t, encrypted)

	fields := testsupport.ReadFields(t, game.ManifestPath)
	for _, name := range []string{"hasEncryptedAudio", "hasEncryptedImages"} {
		if _, ok := fields[name]; ok {
			t.Fatalf("expected %s removed, got %s", name, fields[name])
		}
	}
	if string(fields["encryptionKey"]) != `"a1b2c3d4"` {
		t.Fatalf("expected key kept in place, got %s", fields["encryptionKey"])
	}
	if report.Decrypted != 1 || report.Skipped != 1 || !report.Finalized {
		t.Fatalf("unexpected report: %+v", report)
	}
	if report.RunID == "" {
		t.Fatal("expected run id")
	}
}

func TestRunInPlaceWritesBodyByDefault(t *testing.T) {
	game := testsupport.NewGame(t)
	game.WriteEncryptedManifest(testsupport.DefaultKey)
	png := append([]byte("\x89PNG\r\n\x1a\n"), testsupport.Plaintext(40)...)
	ogg := append([]byte("OggS"), testsupport.Plaintext(5)...)
	game.WriteAsset("img/pictures/a.png_", png)
	game.WriteAsset("audio/bgm/theme.rpgmvo", ogg)
	game.WriteAsset("audio/se/hit.m4a_", []byte{})
	game.WriteRaw("js/main.js", []byte("console.log(1)"))

	report, err := Run(context.Background(), newOptions(t, game.Root))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	cases := map[string][]byte{
		"img/pictures/a.png":  png,
		"audio/bgm/theme.ogg": ogg,
		"audio/se/hit.m4a":    {},
		"js/main.js":          []byte("console.log(1)"),
	}
	for rel, want := range cases {
		got, err := os.ReadFile(game.Path(rel))
		if err != nil {
			t.Fatalf("read %s: %v", rel, err)
		}
		if !bytes.Equal(got, want) {
			t.Fatalf("%s mismatch:\n got %x\nwant %x", rel, got, want)
		}
	}
	for _, rel := range []string{"img/pictures/a.png_", "audio/bgm/theme.rpgmvo", "audio/se/hit.m4a_"} {
		testsupport.AssertMissing(t, game.Path(rel))
	}
	if report.Decrypted != 3 {
		t.Fatalf("expected 3 decrypted, got %+v", report)
	}
	if report.Bytes != int64(len(png)+len(ogg)) {
		t.Fatalf("unexpected bytes: %d", report.Bytes)
	}
}

func TestRunMissingManifestLeavesTreeUntouched(t *testing.T) {
	game := testsupport.NewGame(t)
	game.WriteRaw("img/pic.rpgmvp", bytes.Repeat([]byte{1}, 32))
	before := listTree(t, filepath.Dir(game.Root))

	opts := newOptions(t, game.Root)
	report, err := Run(context.Background(), opts)
	if !errors.Is(err, manifest.ErrSystemJSONNotFound) {
		t.Fatalf("expected manifest not found, got %v", err)
	}
	if report != nil {
		t.Fatalf("expected nil report, got %+v", report)
	}
	after := listTree(t, filepath.Dir(game.Root))
	if strings.Join(before, ",") != strings.Join(after, ",") {
		t.Fatalf("tree changed:\nbefore %v\nafter  %v", before, after)
	}
	testsupport.AssertMissing(t, opts.LockDir)
}

func TestRunMissingGameRoot(t *testing.T) {
	_, err := Run(context.Background(), newOptions(t, filepath.Join(t.TempDir(), "nope")))
	if !errors.Is(err, manifest.ErrNotExists) {
		t.Fatalf("expected ErrNotExists, got %v", err)
	}
}

func TestRunInvalidKeyTouchesNothing(t *testing.T) {
	game := testsupport.NewGame(t)
	game.WriteManifest(testsupport.LayoutMZ, map[string]any{"encryptionKey": "zz"})
	asset := game.WriteRaw("img/pic.rpgmvp", bytes.Repeat([]byte{7}, 32))

	_, err := Run(context.Background(), newOptions(t, game.Root))
	if !manifest.IsKind(err, manifest.InvalidEncryptionKey) {
		t.Fatalf("expected InvalidEncryptionKey, got %v", err)
	}
	var charErr *keycodec.InvalidCharacterError
	if !errors.As(err, &charErr) {
		t.Fatalf("expected InvalidCharacterError cause, got %v", err)
	}
	if charErr.Index != 0 || charErr.Char != 'z' {
		t.Fatalf("unexpected character error: %+v", charErr)
	}
	if _, err := os.Stat(asset); err != nil {
		t.Fatalf("asset should be untouched: %v", err)
	}
	testsupport.AssertMissing(t, game.Path("img/pic.png"))
}

func TestRunShortAssetFailsAloneAndSkipsFinalize(t *testing.T) {
	game := testsupport.NewGame(t)
	game.WriteEncryptedManifest(testsupport.DefaultKey)
	short := game.WriteRaw("img/broken.rpgmvp", []byte("RPGMV"))
	plain := testsupport.Plaintext(100)
	game.WriteAsset("img/ok.rpgmvp", plain)

	report, err := Run(context.Background(), newOptions(t, game.Root))
	var runErr *RunError
	if !errors.As(err, &runErr) {
		t.Fatalf("expected RunError, got %v", err)
	}
	if len(runErr.Files) != 1 || runErr.Files[0].Op != OpDecrypt || filepath.Base(runErr.Files[0].Path) != filepath.Base(short) {
		t.Fatalf("unexpected file errors: %+v", runErr.Files)
	}
	if !errors.Is(err, cipher.ErrShortBuffer) {
		t.Fatalf("expected ErrShortBuffer in chain: %v", err)
	}
	if runErr.Finalize != nil {
		t.Fatalf("finalize should not run: %v", runErr.Finalize)
	}
	if !strings.Contains(err.Error(), "manifest not updated") {
		t.Fatalf("unexpected message: %q", err.Error())
	}

	got, err := os.ReadFile(game.Path("img/ok.png"))
	if err != nil {
		t.Fatalf("sibling should be decrypted: %v", err)
	}
	if !bytes.Equal(got, plain) {
		t.Fatal("sibling content mismatch")
	}
	if _, err := os.Stat(short); err != nil {
		t.Fatalf("short source should remain: %v", err)
	}
	fields := testsupport.ReadFields(t, game.ManifestPath)
	if _, ok := fields["hasEncryptedImages"]; !ok {
		t.Fatal("manifest must stay untouched after a file failure")
	}
	if report.Decrypted != 1 || report.Failed != 1 || report.Finalized {
		t.Fatalf("unexpected report: %+v", report)
	}
}

func TestRunMirrorLeavesSourceUntouched(t *testing.T) {
	game := testsupport.NewGame(t)
	game.WriteManifest(testsupport.LayoutMV, map[string]any{
		"encryptionKey":      testsupport.DefaultKey,
		"hasEncryptedAudio":  true,
		"hasEncryptedImages": true,
		"locale":             "en_US",
	})
	plain := testsupport.Plaintext(300)
	game.WriteAsset("www/img/faces/Actor1.rpgmvp", plain)
	game.WriteRaw("www/index.html", []byte("<html></html>"))
	game.WriteSized("www/movies/intro.webm", 100*1024)
	before := listTree(t, game.Root)

	opts := newOptions(t, game.Root)
	opts.Mode = Mirror
	opts.VerifyCopies = true
	report, err := Run(context.Background(), opts)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	out := game.Root + "_decrypted"
	if report.OutputRoot != out {
		t.Fatalf("unexpected output root %q", report.OutputRoot)
	}
	if after := listTree(t, game.Root); strings.Join(before, ",") != strings.Join(after, ",") {
		t.Fatalf("source tree changed:\nbefore %v\nafter  %v", before, after)
	}

	got, err := os.ReadFile(filepath.Join(out, "www/img/faces/Actor1.png"))
	if err != nil || !bytes.Equal(got, plain) {
		t.Fatalf("mirrored asset mismatch: %v", err)
	}
	testsupport.AssertMissing(t, filepath.Join(out, "www/img/faces/Actor1.rpgmvp"))
	info, err := os.Stat(filepath.Join(out, "www/movies/intro.webm"))
	if err != nil || info.Size() != 100*1024 {
		t.Fatalf("expected verbatim copy: %v", err)
	}

	mirrored := testsupport.ReadFields(t, filepath.Join(out, "www/data/System.json"))
	for _, name := range []string{"encryptionKey", "hasEncryptedAudio", "hasEncryptedImages"} {
		if _, ok := mirrored[name]; ok {
			t.Fatalf("expected %s stripped from mirrored manifest", name)
		}
	}
	if string(mirrored["locale"]) != `"en_US"` {
		t.Fatalf("unrelated fields must survive, got %s", mirrored["locale"])
	}
	original := testsupport.ReadFields(t, game.ManifestPath)
	if _, ok := original["encryptionKey"]; !ok {
		t.Fatal("source manifest must keep its key")
	}
	if report.Decrypted != 1 || report.Copied != 3 || !report.Finalized {
		t.Fatalf("unexpected report: %+v", report)
	}
}

func TestRunFlagPolicyFalse(t *testing.T) {
	game := testsupport.NewGame(t)
	game.WriteEncryptedManifest(testsupport.DefaultKey)
	game.WriteAsset("audio/me/win.rpgmvm", testsupport.Plaintext(20))

	opts := newOptions(t, game.Root)
	opts.ManifestPolicy = manifest.Policy{Flags: manifest.FlagsFalse, StripKey: true}
	if _, err := Run(context.Background(), opts); err != nil {
		t.Fatalf("Run: %v", err)
	}
	fields := testsupport.ReadFields(t, game.ManifestPath)
	for _, name := range []string{"hasEncryptedAudio", "hasEncryptedImages"} {
		var v bool
		if err := json.Unmarshal(fields[name], &v); err != nil || v {
			t.Fatalf("expected %s=false, got %s", name, fields[name])
		}
	}
	if _, ok := fields["encryptionKey"]; ok {
		t.Fatal("expected key stripped")
	}
	if _, err := os.Stat(game.Path("audio/me/win.m4a")); err != nil {
		t.Fatalf("expected decrypted audio: %v", err)
	}
}

func TestRunDryRunWritesNothing(t *testing.T) {
	game := testsupport.NewGame(t)
	game.WriteEncryptedManifest(testsupport.DefaultKey)
	game.WriteAsset("img/pic.rpgmvp", testsupport.Plaintext(30))
	game.WriteRaw("img/readme.txt", []byte("hi"))
	before := listTree(t, filepath.Dir(game.Root))
	manifestBefore, _ := os.ReadFile(game.ManifestPath)

	opts := newOptions(t, game.Root)
	opts.Mode = Mirror
	opts.DryRun = true
	report, err := Run(context.Background(), opts)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if after := listTree(t, filepath.Dir(game.Root)); strings.Join(before, ",") != strings.Join(after, ",") {
		t.Fatalf("dry run changed the tree:\nbefore %v\nafter  %v", before, after)
	}
	manifestAfter, _ := os.ReadFile(game.ManifestPath)
	if !bytes.Equal(manifestBefore, manifestAfter) {
		t.Fatal("dry run modified the manifest")
	}
	if len(report.Plans) != 3 || report.Finalized {
		t.Fatalf("unexpected dry-run report: %+v", report)
	}
	actions := map[planner.Action]int{}
	for _, p := range report.Plans {
		actions[p.Action]++
	}
	if actions[planner.Decrypt] != 1 || actions[planner.Copy] != 2 {
		t.Fatalf("unexpected plan actions: %v", actions)
	}
}

func TestRunCanceledBeforeStart(t *testing.T) {
	game := testsupport.NewGame(t)
	game.WriteEncryptedManifest(testsupport.DefaultKey)
	asset := game.WriteAsset("img/pic.rpgmvp", testsupport.Plaintext(30))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Run(ctx, newOptions(t, game.Root))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if _, err := os.Stat(asset); err != nil {
		t.Fatalf("asset should be untouched: %v", err)
	}
	fields := testsupport.ReadFields(t, game.ManifestPath)
	if _, ok := fields["hasEncryptedImages"]; !ok {
		t.Fatal("manifest must stay untouched after cancellation")
	}
}

func TestRunRefusesConcurrentRun(t *testing.T) {
	game := testsupport.NewGame(t)
	game.WriteEncryptedManifest(testsupport.DefaultKey)

	opts := newOptions(t, game.Root)
	if err := os.MkdirAll(opts.LockDir, 0o755); err != nil {
		t.Fatal(err)
	}
	root, err := filepath.EvalSymlinks(game.Root)
	if err != nil {
		t.Fatal(err)
	}
	held := flock.New(LockPath(opts.LockDir, root))
	ok, err := held.TryLock()
	if err != nil || !ok {
		t.Fatalf("hold lock: ok=%v err=%v", ok, err)
	}
	defer held.Unlock()

	if _, err := Run(context.Background(), opts); !errors.Is(err, ErrAlreadyRunning) {
		t.Fatalf("expected ErrAlreadyRunning, got %v", err)
	}
}

func TestRunFinalizeFailureIsDistinct(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permission checks are bypassed for root")
	}
	game := testsupport.NewGame(t)
	game.WriteEncryptedManifest(testsupport.DefaultKey)
	game.WriteAsset("img/pic.rpgmvp", testsupport.Plaintext(30))

	dataDir := filepath.Dir(game.ManifestPath)
	if err := os.Chmod(dataDir, 0o555); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chmod(dataDir, 0o755) })

	report, err := Run(context.Background(), newOptions(t, game.Root))
	var finErr *FinalizeError
	if !errors.As(err, &finErr) {
		t.Fatalf("expected FinalizeError, got %v", err)
	}
	if !manifest.IsKind(err, manifest.WriteFailed) {
		t.Fatalf("expected WriteFailed cause, got %v", err)
	}
	if !strings.Contains(err.Error(), "manifest is stale") {
		t.Fatalf("unexpected message: %q", err.Error())
	}
	if _, err := os.Stat(game.Path("img/pic.png")); err != nil {
		t.Fatalf("asset should already be decrypted: %v", err)
	}
	if report.Finalized {
		t.Fatal("report must not claim finalization")
	}
}

func TestRunCollectsScanErrors(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permission checks are bypassed for root")
	}
	game := testsupport.NewGame(t)
	game.WriteEncryptedManifest(testsupport.DefaultKey)
	game.WriteAsset("img/pic.rpgmvp", testsupport.Plaintext(30))
	locked := game.Path("locked")
	game.WriteRaw("locked/hidden.rpgmvp", []byte("whatever-long-enough"))
	if err := os.Chmod(locked, 0o000); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chmod(locked, 0o755) })

	report, err := Run(context.Background(), newOptions(t, game.Root))
	var runErr *RunError
	if !errors.As(err, &runErr) || len(runErr.Scan) != 1 {
		t.Fatalf("expected one scan error, got %v", err)
	}
	if _, err := os.Stat(game.Path("img/pic.png")); err != nil {
		t.Fatalf("readable assets should still be decrypted: %v", err)
	}
	if report.ScanErrors != 1 || report.Finalized {
		t.Fatalf("unexpected report: %+v", report)
	}
}

func TestOptionsFromConfig(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithMirror(), testsupport.WithWorkers(3), testsupport.WithFlagPolicy(config.FlagPolicyFalse))
	opts, err := OptionsFromConfig("/games/demo", cfg, nil)
	if err != nil {
		t.Fatalf("OptionsFromConfig: %v", err)
	}
	if opts.Mode != Mirror || opts.Workers != 3 {
		t.Fatalf("unexpected options: %+v", opts)
	}
	if opts.ManifestPolicy.Flags != manifest.FlagsFalse || !opts.ManifestPolicy.StripKey {
		t.Fatalf("unexpected manifest policy: %+v", opts.ManifestPolicy)
	}
	if opts.LockDir != cfg.Paths.LockDir {
		t.Fatalf("unexpected lock dir: %q", opts.LockDir)
	}
}

func TestRetrierRetriesTransientErrorsOnly(t *testing.T) {
	r := retrier{attempts: 2}

	calls := 0
	err := r.do(context.Background(), func() error {
		calls++
		if calls < 2 {
			return errors.New("temporary glitch")
		}
		return nil
	})
	if err != nil || calls != 2 {
		t.Fatalf("expected success on second call, err=%v calls=%d", err, calls)
	}

	calls = 0
	err = r.do(context.Background(), func() error {
		calls++
		return fs.ErrNotExist
	})
	if !errors.Is(err, fs.ErrNotExist) || calls != 1 {
		t.Fatalf("missing files must not be retried, calls=%d", calls)
	}

	calls = 0
	err = r.do(context.Background(), func() error {
		calls++
		return errors.New("still broken")
	})
	if err == nil || calls != 3 {
		t.Fatalf("expected three attempts, got %d", calls)
	}
}

func TestRunErrorMessageAndUnwrap(t *testing.T) {
	cause := errors.New("disk full")
	err := &RunError{
		Files: []*FileError{
			{Path: "/g/a.rpgmvp", Op: OpWrite, Err: cause},
			{Path: "/g/b.rpgmvp", Op: OpRead, Err: fs.ErrPermission},
		},
	}
	msg := err.Error()
	if !strings.HasPrefix(msg, "2 file errors; manifest not updated") {
		t.Fatalf("unexpected message: %q", msg)
	}
	if !strings.Contains(msg, "write /g/a.rpgmvp: disk full") {
		t.Fatalf("expected per-file detail: %q", msg)
	}
	if !errors.Is(err, cause) || !errors.Is(err, fs.ErrPermission) {
		t.Fatal("expected causes reachable through Unwrap")
	}
}

func TestRunRemovesLeftoverTempFiles(t *testing.T) {
	game := testsupport.NewGame(t)
	game.WriteEncryptedManifest(testsupport.DefaultKey)
	game.WriteAsset("img/pic.rpgmvp", testsupport.Plaintext(20))
	leftover := game.WriteRaw("img/.rpgdecrypt-4242.tmp", []byte("partial"))

	report, err := Run(context.Background(), newOptions(t, game.Root))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Cleaned != 1 {
		t.Fatalf("expected 1 cleaned file, got %d", report.Cleaned)
	}
	if report.Total() != 2 {
		t.Fatalf("temp files must not be planned, got %+v", report)
	}
	testsupport.AssertMissing(t, leftover)
}

func TestCleanStaleKeepsRecentFilesWithoutLock(t *testing.T) {
	dir := t.TempDir()
	recent := filepath.Join(dir, ".rpgdecrypt-1.tmp")
	old := filepath.Join(dir, ".rpgdecrypt-2.tmp")
	for _, p := range []string{recent, old} {
		if err := os.WriteFile(p, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	past := time.Now().Add(-2 * staleTempAge)
	if err := os.Chtimes(old, past, past); err != nil {
		t.Fatal(err)
	}

	res := cleanStale([]string{recent, old, filepath.Join(dir, "gone.tmp")}, staleTempAge, logging.NewNop())
	if len(res.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", res.Errors)
	}
	if len(res.Removed) != 1 || res.Removed[0] != old {
		t.Fatalf("Removed = %v, want [%s]", res.Removed, old)
	}
	if _, err := os.Stat(recent); err != nil {
		t.Fatalf("recent temp file should survive: %v", err)
	}
}

func TestRunRejectsCollidingDestinations(t *testing.T) {
	tests := []struct {
		name      string
		mode      Mode
		files     []string
		colliding []string
		dest      string
	}{
		{
			name:      "in place",
			mode:      InPlace,
			files:     []string{"img/a.rpgmvp", "img/a.png_", "img/b.rpgmvp"},
			colliding: []string{"img/a.png_", "img/a.rpgmvp"},
			dest:      "img/b.png",
		},
		{
			name:      "mirror",
			mode:      Mirror,
			files:     []string{"img/a.png", "img/a.png_", "img/b.rpgmvp"},
			colliding: []string{"img/a.png", "img/a.png_"},
			dest:      "img/b.png",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			game := testsupport.NewGame(t)
			game.WriteEncryptedManifest(testsupport.DefaultKey)
			for _, rel := range tt.files {
				if strings.HasSuffix(rel, ".png") {
					game.WriteRaw(rel, testsupport.Plaintext(24))
				} else {
					game.WriteAsset(rel, testsupport.Plaintext(24))
				}
			}

			opts := newOptions(t, game.Root)
			opts.Mode = tt.mode
			report, err := Run(context.Background(), opts)

			var runErr *RunError
			if !errors.As(err, &runErr) {
				t.Fatalf("expected RunError, got %v", err)
			}
			if len(runErr.Files) != len(tt.colliding) {
				t.Fatalf("expected %d file errors, got %v", len(tt.colliding), runErr.Files)
			}
			for i, fe := range runErr.Files {
				if fe.Op != OpPlan || !errors.Is(fe, ErrDestinationConflict) {
					t.Fatalf("unexpected error %v", fe)
				}
				if filepath.Base(fe.Path) != filepath.Base(filepath.FromSlash(tt.colliding[i])) {
					t.Fatalf("error %d path = %s, want %s", i, fe.Path, tt.colliding[i])
				}
			}
			if report.Failed != len(tt.colliding) || report.Finalized {
				t.Fatalf("unexpected report: %+v", report)
			}

			destRoot := game.Root
			if tt.mode == Mirror {
				destRoot = report.OutputRoot
			}
			if _, err := os.Stat(filepath.Join(destRoot, filepath.FromSlash(tt.dest))); err != nil {
				t.Fatalf("unrelated asset should still be written: %v", err)
			}
			if tt.mode == InPlace {
				for _, rel := range tt.colliding {
					if _, err := os.Stat(game.Path(rel)); err != nil {
						t.Fatalf("colliding source %s must be left alone: %v", rel, err)
					}
				}
				testsupport.AssertMissing(t, game.Path("img/a.png"))
			} else {
				testsupport.AssertMissing(t, filepath.Join(destRoot, "img", "a.png"))
			}
		})
	}
}
