// Package modules lists the operation modules compiled into pixelgrid.
package modules

import (
	"github.com/specialistvlad/pixelgrid/internal/registry"
	"github.com/specialistvlad/pixelgrid/modules/adjust"
	"github.com/specialistvlad/pixelgrid/modules/analyze"
	"github.com/specialistvlad/pixelgrid/modules/arith"
	"github.com/specialistvlad/pixelgrid/modules/blur"
	"github.com/specialistvlad/pixelgrid/modules/constant"
	"github.com/specialistvlad/pixelgrid/modules/env_vars"
	"github.com/specialistvlad/pixelgrid/modules/http_client"
	"github.com/specialistvlad/pixelgrid/modules/imageio"
	"github.com/specialistvlad/pixelgrid/modules/output"
	"github.com/specialistvlad/pixelgrid/modules/print"
	"github.com/specialistvlad/pixelgrid/modules/s3"
)

// Core is the definitive list of all modules that are compiled into the
// pixelgrid binary.
func Core() []registry.Module {
	return []registry.Module{
		&constant.Module{},
		&arith.Module{},
		&adjust.Module{},
		&blur.Module{},
		&analyze.Module{},
		&imageio.Module{},
		&output.Module{},
		&print.Module{},
		&env_vars.Module{},
		&http_client.Module{},
		&s3.Module{},
	}
}
