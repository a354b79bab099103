package handler

import (
	"droplink/internal/usecase"
)

var (
	messageHandler    *MessageHandler
	itemHandler       *ItemHandler
	attachmentHandler *AttachmentHandler
)

func Setup(
	messageUseCase *usecase.MessageUseCase,
	itemUseCase *usecase.ItemUseCase,
	attachmentUseCase *usecase.AttachmentUseCase,
) {
	messageHandler = NewMessageHandler(messageUseCase)
	itemHandler = NewItemHandler(itemUseCase)
	attachmentHandler = NewAttachmentHandler(attachmentUseCase)
}

func GetMessageHandler() *MessageHandler {
	return messageHandler
}

func GetItemHandler() *ItemHandler {
	return itemHandler
}

func GetAttachmentHandler() *AttachmentHandler {
	return attachmentHandler
}
