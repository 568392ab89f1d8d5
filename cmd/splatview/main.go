package main

import (
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/bronya/splatview"
	"github.com/bronya/splatview/build"
	"github.com/bronya/splatview/web"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:        "splatview",
		Description: "point-cloud splat conversion and serving toolkit",
		Commands: []*cli.Command{

			{
				Name:   "build",
				Action: commandBuild,
				Flags: []cli.Flag{
					&cli.PathFlag{
						Name:  "config",
						Usage: "path to the configuration file",
						Value: "splatview.hcl",
					},
					&cli.PathFlag{
						Name:  "output",
						Usage: "output directory for converted assets",
						Value: "dist",
					},
					&cli.BoolFlag{
						Name:  "clean",
						Usage: "force a clean build ignoring source modification time data",
						Value: false,
					},
					&cli.Float64Flag{
						Name:  "ratio",
						Usage: "fraction of source points to keep when downsampling",
						Value: 0,
					},
					&cli.BoolFlag{
						Name:  "bundle",
						Usage: "also pack the converted splat files into assets.zip",
						Value: false,
					},
				},
			},

			{
				Name:      "info",
				Action:    commandInfo,
				ArgsUsage: "<scene.splat>",
			},

			{
				Name:   "serve",
				Action: commandServe,
				Flags: []cli.Flag{
					&cli.PathFlag{
						Name:  "config",
						Usage: "path to the configuration file",
						Value: "splatview.hcl",
					},
					&cli.PathFlag{
						Name:  "assets",
						Usage: "directory containing converted splat files",
						Value: "dist/assets",
					},
					&cli.PathFlag{
						Name:  "bundle",
						Usage: "serve from a zip bundle instead of a directory",
					},
					&cli.StringFlag{
						Name:  "bind",
						Usage: "address to listen on",
						Value: "localhost:8735",
					},
				},
			},
		},
	}

	err := app.Run(os.Args)
	if err != nil {
		log.Fatal(err)
	}

}

func commandBuild(ctx *cli.Context) error {
	config, err := splatview.LoadConfig(ctx.Path("config"))
	if err != nil {
		return err
	}

	return build.Build(config, ctx.Path("output"), build.Opts{
		ForceClean:  ctx.Bool("clean"),
		SampleRatio: ctx.Float64("ratio"),
		Bundle:      ctx.Bool("bundle"),
	})
}

func commandInfo(ctx *cli.Context) error {
	if ctx.Args().Len() != 1 {
		return fmt.Errorf("usage: splatview info <scene.splat>")
	}

	buf, err := os.ReadFile(ctx.Args().First())
	if err != nil {
		return err
	}

	scene, err := splatview.Decode(buf)
	if err != nil {
		return err
	}

	var min, max [3]float32
	for i := 0; i < scene.Count; i++ {
		for j := 0; j < 3; j++ {
			v := scene.Positions[i*3+j]
			if i == 0 || v < min[j] {
				min[j] = v
			}
			if i == 0 || v > max[j] {
				max[j] = v
			}
		}
	}

	fmt.Printf("points:          %d\n", scene.Count)
	fmt.Printf("file size:       %d bytes\n", len(buf))
	fmt.Printf("bounding radius: %.3f\n", scene.BoundingRadius())
	fmt.Printf("bounds min:      (%.3f, %.3f, %.3f)\n", min[0], min[1], min[2])
	fmt.Printf("bounds max:      (%.3f, %.3f, %.3f)\n", max[0], max[1], max[2])
	return nil
}

func commandServe(ctx *cli.Context) error {
	config, err := splatview.LoadConfig(ctx.Path("config"))
	if err != nil {
		return err
	}

	var assets *web.AssetLoader
	if bundle := ctx.Path("bundle"); bundle != "" {
		assets, err = web.NewAssetLoaderFromBundle(bundle)
		if err != nil {
			return err
		}
	} else {
		assets = web.NewAssetLoaderFromDir(ctx.Path("assets"))
	}
	defer assets.Close()

	bind := ctx.String("bind")
	log.Printf("[web] serving %d scenes on %s", len(config.Scenes), bind)
	return http.ListenAndServe(bind, web.Handler(web.FromConfig(config), assets))
}
