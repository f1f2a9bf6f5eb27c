package writer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/buger/jsonparser"
	pkgerrors "github.com/glorpus-work/quiltinst/pkg/errors"
	"github.com/glorpus-work/quiltinst/pkg/fsutil"
	"github.com/glorpus-work/quiltinst/pkg/model"
	"github.com/google/uuid"
	"github.com/tidwall/gjson"
)

const (
	// ProfilesFile is the launcher's profile registry in the game directory.
	ProfilesFile = "launcher_profiles.json"
	// ProfileIcon is one of the launcher's built-in profile icons.
	ProfileIcon = "Furnace"

	profileTimeLayout = "2006-01-02T15:04:05.000Z07:00"
)

var profileNamespace = uuid.MustParse("1f0c9b9e-2a4c-5e0e-9d2c-6b7a3e5f4c21")

type launcherProfile struct {
	Name          string `json:"name"`
	Type          string `json:"type"`
	Created       string `json:"created"`
	LastUsed      string `json:"lastUsed"`
	Icon          string `json:"icon"`
	LastVersionID string `json:"lastVersionId"`
}

// ProfileKey is the registry key for a version id. It is stable, so
// reinstalling the same version updates its entry instead of adding one.
func ProfileKey(profileID string) string {
	return strings.ReplaceAll(uuid.NewSHA1(profileNamespace, []byte(profileID)).String(), "-", "")
}

func (w *Writer) upsertProfile(dst fsutil.Destination, m *model.InstallManifest) error {
	data, err := w.readRegistry(dst)
	if err != nil {
		return err
	}

	key := ProfileKey(m.ProfileID)
	now := w.now().UTC().Format(profileTimeLayout)
	created := now
	if c := gjson.GetBytes(data, "profiles."+key+".created"); c.Type == gjson.String {
		created = c.String()
	}

	entry, err := json.Marshal(launcherProfile{
		Name:          model.LoaderName + "-" + m.Base.ID,
		Type:          "custom",
		Created:       created,
		LastUsed:      now,
		Icon:          ProfileIcon,
		LastVersionID: m.ProfileID,
	})
	if err != nil {
		return fsError(ProfilesFile, err)
	}
	out, err := jsonparser.Set(data, entry, "profiles", key)
	if err != nil {
		return &Error{Kind: pkgerrors.ErrMalformedExistingState, Path: ProfilesFile, Err: err}
	}
	return w.put(dst, ProfilesFile, out, fsutil.FileModeDefault)
}

// readRegistry returns the current registry, or an empty one when the file
// does not exist yet. Content that is not an object with an object "profiles"
// is reported as malformed and left untouched.
func (w *Writer) readRegistry(dst fsutil.Destination) ([]byte, error) {
	empty := []byte(`{"profiles":{}}`)
	p, ok := fsutil.Lookup(dst, ProfilesFile)
	if !ok {
		return empty, nil
	}
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, fsError(ProfilesFile, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return empty, nil
	}

	malformed := func(reason string) error {
		return &Error{
			Kind: pkgerrors.ErrMalformedExistingState,
			Path: ProfilesFile,
			Err:  fmt.Errorf("%s: %w", reason, pkgerrors.ErrMalformedExistingState),
		}
	}
	if !gjson.ValidBytes(data) || !gjson.ParseBytes(data).IsObject() {
		return nil, malformed("not a JSON object")
	}
	if profiles := gjson.GetBytes(data, "profiles"); profiles.Exists() && !profiles.IsObject() {
		return nil, malformed(`"profiles" is not an object`)
	}
	return data, nil
}
