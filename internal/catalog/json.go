package catalog

import (
	"encoding/json"
	"fmt"

	"github.com/blackwell-systems/brewhaul/internal/store"
)

// apiCask mirrors the subset of the formulae.brew.sh cask document that
// brewhaul indexes. Artifacts are kept raw because their shape varies
// wildly between casks.
type apiCask struct {
	Token             string            `json:"token"`
	Name              []string          `json:"name"`
	Desc              string            `json:"desc"`
	Homepage          string            `json:"homepage"`
	Deprecated        bool              `json:"deprecated"`
	DeprecationReason string            `json:"deprecation_reason"`
	Artifacts         []json.RawMessage `json:"artifacts"`
}

// parseCatalog decodes the remote cask document into store entries.
func parseCatalog(data []byte) ([]*store.Cask, error) {
	var raw []apiCask
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse catalog document: %w", err)
	}

	casks := make([]*store.Cask, 0, len(raw))
	for _, rc := range raw {
		if rc.Token == "" {
			continue
		}
		casks = append(casks, &store.Cask{
			Token:             rc.Token,
			Description:       rc.Desc,
			Homepage:          rc.Homepage,
			Deprecated:        rc.Deprecated,
			DeprecationReason: rc.DeprecationReason,
			Names:             rc.Name,
			BundleIDs:         bundleIdentifiers(rc.Artifacts),
		})
	}
	return casks, nil
}

// uninstallArtifact is the one artifact shape we care about: its "quit"
// entries carry the application bundle identifiers.
type uninstallArtifact struct {
	Uninstall []map[string]json.RawMessage `json:"uninstall"`
}

// bundleIdentifiers mines bundle ids from a cask's uninstall/quit
// artifact entries. A quit value may be a single string or a list;
// both forms are flattened.
func bundleIdentifiers(artifacts []json.RawMessage) []string {
	var ids []string
	seen := make(map[string]struct{})

	add := func(id string) {
		if id == "" {
			return
		}
		if _, dup := seen[id]; dup {
			return
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}

	for _, artifact := range artifacts {
		var ua uninstallArtifact
		// Artifacts that are arrays or plain strings simply fail to
		// decode here and are skipped.
		if err := json.Unmarshal(artifact, &ua); err != nil {
			continue
		}
		for _, entry := range ua.Uninstall {
			quit, ok := entry["quit"]
			if !ok {
				continue
			}
			var single string
			if err := json.Unmarshal(quit, &single); err == nil {
				add(single)
				continue
			}
			var many []string
			if err := json.Unmarshal(quit, &many); err == nil {
				for _, id := range many {
					add(id)
				}
			}
		}
	}
	return ids
}
