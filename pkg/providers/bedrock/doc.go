// Package bedrock provides AWS Bedrock adapters using InvokeModel.
//
// The generation adapter speaks the native request body of the model
// family named by the model ID: Anthropic messages (with tool use), Amazon
// Titan text, Meta Llama and Mistral prompts. Only Anthropic models accept
// tools.
//
// The embedder supports Amazon Titan and Cohere embedding models.
//
// Credentials come from the aws block of the configuration when an access
// key pair is set, otherwise from the SDK default chain. They are loaded
// for every call.
package bedrock
