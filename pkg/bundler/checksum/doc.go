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

// Package checksum provides SHA256 digests for packaged artifacts.
//
// WriteSidecar stores an artifact's digest next to it ("pack.vsix.sha256") in
// the format understood by sha256sum:
//
//	sum, err := checksum.WriteSidecar(ctx, "dist/vscode/vscode-python-1.0.0.vsix")
//	if err != nil {
//	    return err
//	}
//
// VerifySidecar checks an artifact before upload:
//
//	ok, err := checksum.VerifySidecar(path) // ok is false when no sidecar exists
//
// The sidecar can also be checked by hand:
//
//	sha256sum -c vscode-python-1.0.0.vsix.sha256
package checksum
