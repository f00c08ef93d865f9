package asset

import (
	"sort"

	"github.com/RoaringBitmap/roaring"
)

// DependencyIndex answers "which assets nest this template, directly or
// through other templates". Assets are numbered by their position in the
// catalog listing; each template maps to the bitmap of assets that contain
// an instance of it.
type DependencyIndex struct {
	entries []Entry
	ordinal map[string]uint32          // GUID → index into entries
	direct  map[uint32]*roaring.Bitmap // template → assets nesting it
}

// BuildDependencyIndex snapshots the catalog.
func BuildDependencyIndex(c *Catalog) (*DependencyIndex, error) {
	entries, err := c.Entries()
	if err != nil {
		return nil, err
	}
	links, err := c.Links()
	if err != nil {
		return nil, err
	}
	return NewDependencyIndex(entries, links), nil
}

// NewDependencyIndex builds an index from catalog rows. Links naming GUIDs
// absent from entries are ignored.
func NewDependencyIndex(entries []Entry, links []LinkEntry) *DependencyIndex {
	d := &DependencyIndex{
		entries: entries,
		ordinal: make(map[string]uint32, len(entries)),
		direct:  make(map[uint32]*roaring.Bitmap),
	}
	for i, e := range entries {
		d.ordinal[e.GUID] = uint32(i)
	}
	for _, l := range links {
		asset, ok := d.ordinal[l.AssetGUID]
		if !ok {
			continue
		}
		tmpl, ok := d.ordinal[l.TemplateGUID]
		if !ok {
			continue
		}
		bm := d.direct[tmpl]
		if bm == nil {
			bm = roaring.New()
			d.direct[tmpl] = bm
		}
		bm.Add(asset)
	}
	return d
}

// Direct returns the assets that contain an instance of guid.
func (d *DependencyIndex) Direct(guid string) []Entry {
	ord, ok := d.ordinal[guid]
	if !ok {
		return nil
	}
	bm, ok := d.direct[ord]
	if !ok {
		return nil
	}
	return d.collect(bm)
}

// Dependents returns every asset that would change if guid changed: the
// transitive closure of Direct. Cycles are tolerated; the template itself is
// never included.
func (d *DependencyIndex) Dependents(guid string) []Entry {
	ord, ok := d.ordinal[guid]
	if !ok {
		return nil
	}
	start, ok := d.direct[ord]
	if !ok {
		return nil
	}

	seen := roaring.New()
	frontier := start.Clone()
	for !frontier.IsEmpty() {
		seen.Or(frontier)
		next := roaring.New()
		it := frontier.Iterator()
		for it.HasNext() {
			if bm, ok := d.direct[it.Next()]; ok {
				next.Or(bm)
			}
		}
		next.AndNot(seen)
		frontier = next
	}
	seen.Remove(ord)
	return d.collect(seen)
}

func (d *DependencyIndex) collect(bm *roaring.Bitmap) []Entry {
	out := make([]Entry, 0, bm.GetCardinality())
	it := bm.Iterator()
	for it.HasNext() {
		out = append(out, d.entries[it.Next()])
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}
