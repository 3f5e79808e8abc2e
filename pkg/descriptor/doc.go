// Package descriptor loads and validates declarative Android build descriptors.
//
// A descriptor document is a string-keyed mapping, usually read from a YAML
// file, that mirrors the interesting parts of an application module's Gradle
// build file:
//
//	applicationIdentifier: com.example.app
//	minPlatformVersion: 23
//	targetPlatformVersion: flutter.targetSdkVersion
//	compileOptions:
//	  source: "11"
//	  target: "11"
//	pluginList: [com.android.application, org.jetbrains.kotlin.android]
//	signingReference: debug
//	sourceRoot: ../..
//
// Load turns a document into an immutable BuildDescriptor. Validation runs in
// a fixed order and stops at the first failure:
//
//  1. field presence (MissingFieldError, UnknownFieldError)
//  2. field types and values (TypeMismatchError, InvalidValueError)
//  3. duplicate plugins (DuplicatePluginError)
//  4. reference resolution and version order (UnresolvedReferenceError,
//     VersionOrderError)
//  5. signing reference (UnknownSigningConfigError)
//  6. source root existence (SourceRootError), unless deferred or skipped
//
// Integer fields accept a reference bare or wrapped as ${name}. versionName is
// free text, so only the wrapped form is a reference there; a bare
// "flutter.versionName" stays a literal string.
//
// Platform-version references such as "flutter.targetSdkVersion" are never
// read from the environment. Callers pass a VersionResolver with WithResolver.
//
// Top-level dotted keys ("compileOptions.source") are merged into nested
// mappings on a copy of the document; Load never modifies its input.
package descriptor
