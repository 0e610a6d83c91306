package main

import (
	"os"
	"reflect"
	"strings"

	musgen "github.com/mus-format/musgen-go/mus"
	genops "github.com/mus-format/musgen-go/options/generate"
	structops "github.com/mus-format/musgen-go/options/struct"
	typeops "github.com/mus-format/musgen-go/options/type"
	"github.com/poiesic/ledgersync/core"
)

// Field order below is the on-disk order. Append, never reorder.
func main() {
	cwd, err := os.Getwd()
	if err != nil {
		panic(err)
	}
	if strings.HasSuffix(cwd, "core") {
		if err := os.Chdir(".."); err != nil {
			panic(err)
		}
	}
	g, err := musgen.NewCodeGenerator(
		genops.WithPkgPath("github.com/poiesic/ledgersync/core"),
	)
	if err != nil {
		panic(err)
	}

	g.AddDefinedType(reflect.TypeFor[core.ID]())
	g.AddDefinedType(reflect.TypeFor[core.RecordStatus]())
	g.AddDefinedType(reflect.TypeFor[core.RunStatus]())

	// Unix micro timestamps
	micro := typeops.WithTimeUnit(typeops.Micro)

	must(g.AddStruct(reflect.TypeFor[core.RecordFields](),
		structops.WithField(), // Amount
		structops.WithField(), // Description
		structops.WithField(micro),
		structops.WithField(), // Category
		structops.WithField(), // Vendor
		structops.WithField(), // PaymentMethod
		structops.WithField(), // Notes
		structops.WithField(), // Extra
	))

	must(g.AddStruct(reflect.TypeFor[core.SyncMetadata](),
		structops.WithField(micro),
		structops.WithField(micro),
		structops.WithField(),
	))

	must(g.AddStruct(reflect.TypeFor[core.StoredRecord](),
		structops.WithField(), // ID
		structops.WithField(), // OwnerID
		structops.WithField(), // SourceSystem
		structops.WithField(), // SourceID
		structops.WithField(), // RecordFields
		structops.WithField(), // Metadata
		structops.WithField(), // Status
		structops.WithField(micro),
		structops.WithField(micro),
	))

	must(g.AddStruct(reflect.TypeFor[core.RunStats](),
		structops.WithField(),
		structops.WithField(),
		structops.WithField(),
		structops.WithField(),
		structops.WithField(),
	))

	must(g.AddStruct(reflect.TypeFor[core.SyncRun](),
		structops.WithField(), // ID
		structops.WithField(), // OwnerID
		structops.WithField(), // ExternalCompanyID
		structops.WithField(), // SourceSystem
		structops.WithField(micro),
		structops.WithField(micro),
		structops.WithField(), // Stats
		structops.WithField(), // Status
		structops.WithField(), // Error
	))

	must(g.AddStruct(reflect.TypeFor[core.Usage](),
		structops.WithField(),
		structops.WithField(),
		structops.WithField(),
	))

	must(g.AddStruct(reflect.TypeFor[core.CacheEntry](),
		structops.WithField(), // Key
		structops.WithField(), // Payload
		structops.WithField(), // Model
		structops.WithField(), // Usage
		structops.WithField(micro),
		structops.WithField(micro),
	))

	bs, err := g.Generate()
	if err != nil {
		panic(err)
	}

	// go generate runs this from the core package directory
	err = os.WriteFile("records_mus.gen.go", bs, 0644)
	if err != nil {
		panic(err)
	}
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}
