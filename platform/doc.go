// Package platform defines the types shared between the supervising parent
// process and the sandbox-building child: the build configuration shipped
// over the config pipe, the failure report shipped back over the status
// pipe, and the share vocabulary. Most users should use the top-level
// isolator package; import this package directly only if you need to
// inspect the wire types.
package platform
