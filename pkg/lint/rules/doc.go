// Package rules registers the descriptor health rules.
// Import this package for its side effects to register all rules with the
// global lint registry.
package rules

// Android Gradle plugin identifiers referenced by the rules.
const (
	pluginAndroidApplication = "com.android.application"
	pluginKotlinAndroid      = "org.jetbrains.kotlin.android"
	pluginKotlinAndroidShort = "kotlin-android"
)
