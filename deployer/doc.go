/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package deployer points a branch's deploy document at a freshly built image.
//
// A Deployer ties together the manifest resolver and the commit engine:
//
//	d, err := deployer.New(store, deployer.Config{
//	    Registry:   "gcr.io",
//	    Repository: "acme/api",
//	    Ref:        "main",
//	})
//	if err != nil {
//	    return err
//	}
//	out, err := d.DeployCommitID(ctx, "4f2c1e9", deployer.Request{
//	    Branch:  "staging",
//	    Persist: true,
//	})
//
// DeployCommitID builds the image reference from the configured registry and
// repository; DeployImage takes a fully formed reference instead. Both read
// the manifest fresh on every call.
package deployer
