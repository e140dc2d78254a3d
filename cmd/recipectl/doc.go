// Command recipectl is the operator CLI for the meal planner backend.
//
// # Commands
//
//   - migrate applies the embedded SQL migrations to DATABASE_URL.
//   - sweep removes recipes left behind by an interrupted creation and
//     closes their pending AI runs.
//   - models lists the models offered by the configured OpenRouter endpoint.
//   - ask streams a single chat completion to stdout, for checking the
//     API key and model settings.
//
// Configuration comes from the same environment variables as the API server.
package main
