// Package recognize converts line images to text.
//
// Two backends implement Recognizer:
//
//   - HuggingFace posts each PNG to a hosted handwriting model
//     (microsoft/trocr-large-handwritten by default) through the Inference
//     API. It needs an API key, read from a credential.Store on every call.
//   - Tesseract runs the local Tesseract engine through gosseract. It needs
//     no key but the native library and language data must be installed:
//     apt-get install tesseract-ocr tesseract-ocr-eng, or
//     brew install tesseract.
//
// # Errors
//
// Recognizers report failures through a small set of sentinels:
//
//   - ErrMissingCredential: no API key stored; no request was sent.
//   - ErrAPI: the service answered with a non-2xx status (*APIError) or
//     could not be reached.
//   - ErrNoTextDetected: the response carried no transcription.
//
// Calls are never retried.
package recognize
