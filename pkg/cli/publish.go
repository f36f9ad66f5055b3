// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/extpack/extpack/pkg/defaults"
	"github.com/extpack/extpack/pkg/publisher"
	"github.com/extpack/extpack/pkg/publisher/ociregistry"
	"github.com/extpack/extpack/pkg/publisher/openvsx"
	"github.com/extpack/extpack/pkg/publisher/vsmarketplace"
	"github.com/extpack/extpack/pkg/serializer"
)

// credentialEnv maps registry types to the environment variable holding
// their credential.
var credentialEnv = map[string]string{
	vsmarketplace.Type: "VSCE_PAT",
	openvsx.Type:       "OVSX_PAT",
	ociregistry.Type:   "OCI_CREDENTIAL",
}

// publishCmdOptions holds parsed options for the publish command.
type publishCmdOptions struct {
	registry      string
	artifact      string
	credential    string
	ociTarget     string
	openVSXURL    string
	insecureTLS   bool
	plainHTTP     bool
	checkChecksum bool
	format        serializer.Format
}

// parsePublishCmdOptions parses and validates command options.
func parsePublishCmdOptions(cmd *cli.Command) (*publishCmdOptions, error) {
	format, err := parseOutputFormat(cmd)
	if err != nil {
		return nil, err
	}

	opts := &publishCmdOptions{
		registry:      strings.ToLower(strings.TrimSpace(cmd.String("registry"))),
		artifact:      cmd.String("artifact"),
		credential:    cmd.String("token"),
		ociTarget:     cmd.String("oci-target"),
		openVSXURL:    cmd.String("openvsx-url"),
		insecureTLS:   cmd.Bool("insecure-tls"),
		plainHTTP:     cmd.Bool("plain-http"),
		checkChecksum: cmd.Bool("verify-checksum"),
		format:        format,
	}

	if opts.credential == "" {
		if env, ok := credentialEnv[opts.registry]; ok {
			opts.credential = os.Getenv(env)
		}
	}

	if opts.registry == ociregistry.Type && opts.ociTarget == "" {
		return nil, fmt.Errorf("--oci-target is required when --registry is %q", ociregistry.Type)
	}
	return opts, nil
}

// newPublisher wires every registry reachable with opts through one
// rate-limited HTTP client.
func newPublisher(opts *publishCmdOptions) (*publisher.Publisher, error) {
	client := publisher.NewHTTPClient(
		publisher.WithRateLimit(defaults.RegistryRequestsPerSecond, defaults.RegistryRequestBurst),
		publisher.WithUserAgent(fmt.Sprintf("%s/%s", name, version)),
		publisher.WithInsecureSkipVerify(opts.insecureTLS),
	)

	pubOpts := []publisher.Option{
		publisher.WithChecksumVerification(opts.checkChecksum),
		publisher.WithRegistry(vsmarketplace.New(vsmarketplace.WithHTTPClient(client))),
		publisher.WithRegistry(openvsx.New(
			openvsx.WithBaseURL(opts.openVSXURL),
			openvsx.WithHTTPClient(client),
		)),
	}

	if opts.ociTarget != "" {
		oci, err := ociregistry.New(opts.ociTarget,
			ociregistry.WithPlainHTTP(opts.plainHTTP),
			ociregistry.WithHTTPClient(client),
		)
		if err != nil {
			return nil, err
		}
		pubOpts = append(pubOpts, publisher.WithRegistry(oci))
	}

	return publisher.New(pubOpts...), nil
}

func publishCmd() *cli.Command {
	return &cli.Command{
		Name:                  "publish",
		EnableShellCompletion: true,
		Usage:                 "Publish a packaged extension pack to a registry",
		Description: `Uploads a .vsix archive produced by "extpack build --package" to one registry.
The extension id and version are read from the archive. When the registry
already has that version the upload is skipped and reported as such.

# Registries

  vsmarketplace - Visual Studio Marketplace (credential: VSCE_PAT)
  openvsx       - Open VSX (credential: OVSX_PAT)
  oci           - any OCI registry, requires --oci-target (credential: OCI_CREDENTIAL,
                  "user:password" or a bearer token; falls back to the Docker credential store)

Credentials can be placed in a .env file in the working directory.

# Examples

  extpack publish --registry openvsx --artifact dist/vscode/vscode-python-1.0.0.vsix
  extpack publish --registry oci --oci-target ghcr.io/acme/packs \
    --artifact dist/vscode/vscode-python-1.0.0.vsix`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "registry",
				Aliases:  []string{"r"},
				Required: true,
				Sources:  cli.EnvVars("EXTPACK_REGISTRY"),
				Usage: fmt.Sprintf("Target registry (supported values: %s, %s, %s)",
					vsmarketplace.Type, openvsx.Type, ociregistry.Type),
			},
			&cli.StringFlag{
				Name:     "artifact",
				Aliases:  []string{"a"},
				Required: true,
				Usage:    "Path to the .vsix archive to publish",
			},
			&cli.StringFlag{
				Name:  "token",
				Usage: "Registry credential (default: the registry's credential environment variable)",
			},
			&cli.StringFlag{
				Name:    "oci-target",
				Sources: cli.EnvVars("EXTPACK_OCI_TARGET"),
				Usage:   "OCI repository root packs are pushed under (e.g., ghcr.io/acme/packs)",
			},
			&cli.StringFlag{
				Name:    "openvsx-url",
				Value:   openvsx.DefaultBaseURL,
				Sources: cli.EnvVars("EXTPACK_OPENVSX_URL"),
				Usage:   "Open VSX server URL",
			},
			&cli.BoolFlag{
				Name:  "verify-checksum",
				Value: true,
				Usage: "Verify the archive against its .sha256 file when one exists",
			},
			&cli.BoolFlag{
				Name:  "insecure-tls",
				Usage: "Skip TLS certificate verification",
			},
			&cli.BoolFlag{
				Name:  "plain-http",
				Usage: "Use HTTP instead of HTTPS for the OCI registry (for local development)",
			},
			outputFlag(),
			formatFlag(),
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			opts, err := parsePublishCmdOptions(cmd)
			if err != nil {
				return err
			}

			pub, err := newPublisher(opts)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(ctx, defaults.CLIPublishTimeout)
			defer cancel()

			slog.Info("publishing", "registry", opts.registry, "artifact", opts.artifact)

			res, err := pub.Publish(ctx, publisher.Request{
				Credential:   opts.credential,
				ArtifactPath: opts.artifact,
				Registry:     opts.registry,
			})
			if err != nil {
				return err
			}

			slog.Info("publish complete",
				"registry", res.Registry,
				"extension", res.ExtensionID,
				"version", res.Version,
				"uploaded", res.IsUpdate,
				"url", res.URL,
			)

			return writeResult(ctx, cmd, opts.format, res)
		},
	}
}
