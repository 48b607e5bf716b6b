package factory

import (
	"github.com/inercia/go-memllm/pkg/providers/anthropic"
	"github.com/inercia/go-memllm/pkg/providers/azureopenai"
	"github.com/inercia/go-memllm/pkg/providers/bedrock"
	"github.com/inercia/go-memllm/pkg/providers/deepseek"
	"github.com/inercia/go-memllm/pkg/providers/gemini"
	"github.com/inercia/go-memllm/pkg/providers/huggingface"
	"github.com/inercia/go-memllm/pkg/providers/lmstudio"
	"github.com/inercia/go-memllm/pkg/providers/mock"
	"github.com/inercia/go-memllm/pkg/providers/ollama"
	"github.com/inercia/go-memllm/pkg/providers/openai"
	"github.com/inercia/go-memllm/pkg/providers/openrouter"
	"github.com/inercia/go-memllm/pkg/providers/vllm"
)

func init() {
	RegisterLLM(OpenAI, wrapLLM(openai.NewLLM))
	RegisterLLM(AzureOpenAI, wrapLLM(azureopenai.NewLLM))
	RegisterLLM(DeepSeek, wrapLLM(deepseek.NewLLM))
	RegisterLLM(OpenRouter, wrapLLM(openrouter.NewLLM))
	RegisterLLM(Gemini, wrapLLM(gemini.NewLLM))
	RegisterLLM(Ollama, wrapLLM(ollama.NewLLM))
	RegisterLLM(AWSBedrock, wrapLLM(bedrock.NewLLM))
	RegisterLLM(Anthropic, wrapLLM(anthropic.NewLLM))
	RegisterLLM(LMStudio, wrapLLM(lmstudio.NewLLM))
	RegisterLLM(VLLM, wrapLLM(vllm.NewLLM))
	RegisterLLM(Mock, wrapLLM(mock.NewLLM))

	RegisterEmbedder(OpenAI, wrapEmbedder(openai.NewOpenAIEmbedder))
	RegisterEmbedder(AzureOpenAI, wrapEmbedder(azureopenai.NewEmbedder))
	RegisterEmbedder(Gemini, wrapEmbedder(gemini.NewEmbedder))
	RegisterEmbedder(VertexAI, wrapEmbedder(gemini.NewVertexEmbedder))
	RegisterEmbedder(Ollama, wrapEmbedder(ollama.NewEmbedder))
	RegisterEmbedder(AWSBedrock, wrapEmbedder(bedrock.NewEmbedder))
	RegisterEmbedder(HuggingFace, wrapEmbedder(huggingface.NewEmbedder))
	RegisterEmbedder(LMStudio, wrapEmbedder(lmstudio.NewEmbedder))
	RegisterEmbedder(Mock, wrapEmbedder(mock.NewEmbedder))
}
